package command

import (
	"fmt"
	"regexp"

	"github.com/pixil98/go-royale/internal/telemetry"
)

var serviceNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

type TelemetryConfig struct {
	Enabled     bool   `json:"enabled"`
	ServiceName string `json:"service_name,omitempty"`
}

func (c *TelemetryConfig) validate() error {
	if c.ServiceName != "" && !serviceNamePattern.MatchString(c.ServiceName) {
		return fmt.Errorf("telemetry: service_name %q may only hold letters, digits, dots, dashes and underscores", c.ServiceName)
	}
	return nil
}

// buildExporter returns nil when tracing is off; spans then go to the no-op
// global provider.
func (c *TelemetryConfig) buildExporter() *telemetry.Exporter {
	if !c.Enabled {
		return nil
	}
	return telemetry.NewExporter(c.ServiceName)
}
