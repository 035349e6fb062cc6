package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// IntegrationTestSuite gives link tests a shared working directory and a
// context bounded to five minutes. Embed it in a suite and run the suite
// with suite.Run after IntegrationTest.
type IntegrationTestSuite struct {
	suite.Suite
	ctx     context.Context
	cancel  context.CancelFunc
	dir     string
	started time.Time
}

// SetupSuite creates the working directory.
func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.started = time.Now()

	dir, err := os.MkdirTemp("", "tablelink-it-*")
	s.Require().NoError(err)
	s.dir = dir
	s.T().Logf("integration files in %s", s.dir)
}

// TearDownSuite removes every file the suite wrote.
func (s *IntegrationTestSuite) TearDownSuite() {
	s.cancel()
	if s.dir != "" {
		_ = os.RemoveAll(s.dir)
	}
	s.T().Logf("integration suite took %v", time.Since(s.started))
}

// Context returns the suite context.
func (s *IntegrationTestSuite) Context() context.Context {
	return s.ctx
}

// Path returns name inside the working directory.
func (s *IntegrationTestSuite) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// WriteFile writes raw bytes, e.g. a file in a legacy text encoding.
func (s *IntegrationTestSuite) WriteFile(name string, content []byte) string {
	path := s.Path(name)
	s.Require().NoError(os.WriteFile(path, content, 0o644))
	return path
}

// WriteCSV writes records as comma-separated text.
func (s *IntegrationTestSuite) WriteCSV(name string, records [][]string) string {
	return WriteCSV(s.T(), s.dir, name, records)
}

// WriteXLSX writes records to the named sheet of a new workbook.
func (s *IntegrationTestSuite) WriteXLSX(name, sheet string, records [][]string) string {
	return WriteXLSX(s.T(), s.dir, name, sheet, records)
}

// IntegrationTest marks a test as an integration test
func IntegrationTest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// CreateLinkData writes a customer destination of rows records and a source
// holding an email and a tier for every other customer. Both files share
// the "id" column.
func CreateLinkData(t *testing.T, dir string, rows int) (source, destination string) {
	t.Helper()

	dst := [][]string{{"id", "name", "city"}}
	src := [][]string{{"id", "email", "tier"}}
	for i := 0; i < rows; i++ {
		id := strconv.Itoa(i)
		dst = append(dst, []string{id, fmt.Sprintf("Customer_%d", i), fmt.Sprintf("City_%d", i%17)})
		if i%2 == 0 {
			src = append(src, []string{id, fmt.Sprintf("c%d@example.com", i), strconv.Itoa(i % 3)})
		}
	}

	return WriteCSV(t, dir, "source.csv", src), WriteCSV(t, dir, "destination.csv", dst)
}

// PerformanceTest provides utilities for performance testing
type PerformanceTest struct {
	t         *testing.T
	name      string
	threshold struct {
		minThroughput float64 // rows/sec
		maxMemory     int64   // bytes
	}
}

// NewPerformanceTest creates a new performance test
func NewPerformanceTest(t *testing.T, name string) *PerformanceTest {
	return &PerformanceTest{
		t:    t,
		name: name,
	}
}

// WithThroughputTarget sets minimum throughput requirement
func (p *PerformanceTest) WithThroughputTarget(rowsPerSec float64) *PerformanceTest {
	p.threshold.minThroughput = rowsPerSec
	return p
}

// WithMemoryTarget sets maximum memory usage
func (p *PerformanceTest) WithMemoryTarget(maxBytes int64) *PerformanceTest {
	p.threshold.maxMemory = maxBytes
	return p
}

// Run executes the performance test
func (p *PerformanceTest) Run(fn func() (rowsProcessed int64, duration time.Duration)) {
	p.t.Helper()

	initialMem := CaptureMemoryProfile()
	rows, duration := fn()
	finalMem := CaptureMemoryProfile()

	throughput := float64(rows) / duration.Seconds()
	memoryUsed := int64(finalMem.TotalAlloc - initialMem.TotalAlloc)

	p.t.Logf("Performance Test: %s", p.name)
	p.t.Logf("  Rows: %d", rows)
	p.t.Logf("  Duration: %v", duration)
	p.t.Logf("  Throughput: %.0f rows/sec", throughput)
	p.t.Logf("  Allocated: %s", formatBytes(memoryUsed))

	if p.threshold.minThroughput > 0 && throughput < p.threshold.minThroughput {
		p.t.Errorf("Throughput %.0f rows/sec below target %.0f rows/sec",
			throughput, p.threshold.minThroughput)
	}

	if p.threshold.maxMemory > 0 && memoryUsed > p.threshold.maxMemory {
		p.t.Errorf("Memory usage %s exceeds target %s",
			formatBytes(memoryUsed), formatBytes(p.threshold.maxMemory))
	}
}

// MemoryProfile captures memory statistics
type MemoryProfile struct {
	AllocBytes uint64
	TotalAlloc uint64
	HeapInuse  uint64
}

// CaptureMemoryProfile captures current memory profile
func CaptureMemoryProfile() *MemoryProfile {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &MemoryProfile{
		AllocBytes: m.Alloc,
		TotalAlloc: m.TotalAlloc,
		HeapInuse:  m.HeapInuse,
	}
}

// formatBytes formats bytes into human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
