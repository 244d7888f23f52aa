// Package diagnostics exposes a /debug/system introspection endpoint
// reporting host and Go runtime resource usage, grounded in the same
// gopsutil collectors the reference API server uses for its own
// system handler.
package diagnostics

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/leaguerunner/tournament/pkg/logger"
)

// SystemMetrics is the /debug/system response body.
type SystemMetrics struct {
	CPU    CPUMetrics    `json:"cpu"`
	Memory MemoryMetrics `json:"memory"`
	Disk   DiskMetrics   `json:"disk"`
	Host   HostMetrics   `json:"host"`
	Go     GoMetrics     `json:"go"`
}

// CPUMetrics is per-process CPU load.
type CPUMetrics struct {
	UsagePercent float64 `json:"usage_percent"`
	Cores        int     `json:"cores"`
}

// MemoryMetrics is host virtual memory usage.
type MemoryMetrics struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// DiskMetrics is root filesystem usage.
type DiskMetrics struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// HostMetrics identifies the machine this agent is running on.
type HostMetrics struct {
	Hostname string `json:"hostname"`
	Platform string `json:"platform"`
	OS       string `json:"os"`
	Uptime   uint64 `json:"uptime"`
}

// GoMetrics is the runtime's own accounting.
type GoMetrics struct {
	Version    string `json:"version"`
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`
	GOMAXPROCS int    `json:"gomaxprocs"`
}

// Handler serves GET /debug/system.
type Handler struct {
	log *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(log *logger.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP collects and writes the current system snapshot.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var m SystemMetrics

	if percents, err := cpu.Percent(50*time.Millisecond, false); err == nil && len(percents) > 0 {
		m.CPU.UsagePercent = percents[0]
	}
	m.CPU.Cores = runtime.NumCPU()

	if vm, err := mem.VirtualMemory(); err == nil {
		m.Memory.Total = vm.Total
		m.Memory.Used = vm.Used
		m.Memory.Free = vm.Free
		m.Memory.UsedPercent = vm.UsedPercent
	}

	if du, err := disk.Usage("/"); err == nil {
		m.Disk.Total = du.Total
		m.Disk.Used = du.Used
		m.Disk.Free = du.Free
		m.Disk.UsedPercent = du.UsedPercent
	}

	if hi, err := host.Info(); err == nil {
		m.Host.Hostname = hi.Hostname
		m.Host.Platform = hi.Platform
		m.Host.OS = hi.OS
		m.Host.Uptime = hi.Uptime
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	m.Go.Version = runtime.Version()
	m.Go.Goroutines = runtime.NumGoroutine()
	m.Go.HeapAlloc = memStats.HeapAlloc
	m.Go.HeapSys = memStats.HeapSys
	m.Go.NumGC = memStats.NumGC
	m.Go.GOMAXPROCS = runtime.GOMAXPROCS(0)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m); err != nil {
		h.log.LogError("failed to encode system metrics", err)
	}
}
