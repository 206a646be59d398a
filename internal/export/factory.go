package export

import (
	"fmt"

	"nido-go/internal/config"
	"nido-go/internal/nido"
)

// NewExporterFromConfig creates an Exporter implementation based on the export config type.
func NewExporterFromConfig(cfg config.ExportConfig) (nido.Exporter, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryExporter(cfg.Name), nil
	case "filesystem":
		if cfg.FSExportDir == "" {
			return nil, fmt.Errorf("filesystem export requires fs_export_dir to be set")
		}
		return NewFileSystemExporter(cfg.Name, cfg.FSExportDir)
	case "s3":
		return NewS3Exporter(cfg)
	default:
		return nil, fmt.Errorf("unknown export type: %s", cfg.Type)
	}
}
