package importer

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/tphakala/openingbook/internal/logger"
)

// processMemoryMB returns the resident set size of this process in MB
func processMemoryMB() (float64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(mem.RSS) / 1024 / 1024, nil
}

func (i *Importer) logResources() {
	rss, err := processMemoryMB()
	if err != nil {
		i.log.Debug("Process memory unavailable", logger.Error(err))
		return
	}
	i.log.Info("Process resources", logger.Float64("memory_rss_mb", rss))
}
