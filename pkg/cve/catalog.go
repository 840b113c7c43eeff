// Package cve matches a cluster version against a catalog of known
// Kubernetes vulnerabilities and their fixed releases.
package cve

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	dbTypes "github.com/aquasecurity/trivy-db/pkg/types"
	"go.uber.org/multierr"

	"kscan/pkg/reports"
	"kscan/pkg/version"
)

var (
	ErrUnknownSeverity = errors.New("unknown severity")
	ErrNoFixedVersions = errors.New("no fixed versions")
)

// Severity is the catalog spelling of a severity: "Low", "Medium",
// "High" or "Critical".
type Severity string

// Level maps the catalog spelling onto the trivy-db severity scale.
func (s Severity) Level() (dbTypes.Severity, error) {
	level, err := dbTypes.NewSeverity(strings.ToUpper(string(s)))
	if err != nil || level == dbTypes.SeverityUnknown {
		return dbTypes.SeverityUnknown, fmt.Errorf("%w: %q", ErrUnknownSeverity, string(s))
	}
	return level, nil
}

// Tone is the terminal styling for the severity: Low is plain, Medium is
// a warning, High and Critical are alerts.
func (s Severity) Tone() reports.Tone {
	level, _ := s.Level()
	switch level {
	case dbTypes.SeverityCritical, dbTypes.SeverityHigh:
		return reports.ToneAlert
	case dbTypes.SeverityMedium:
		return reports.ToneWarn
	default:
		return reports.ToneDefault
	}
}

// Grade is the numeric rank used to order affecting CVEs. The catalog may
// carry it as a JSON number or a numeric string.
type Grade float64

func (g *Grade) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*g = Grade(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("grade must be a number: %s", string(b))
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("grade must be a number: %q", s)
	}
	*g = Grade(f)
	return nil
}

func (g Grade) String() string {
	return strconv.FormatFloat(float64(g), 'f', -1, 64)
}

// FixedVersion is the first release on a minor line that carries the fix.
type FixedVersion struct {
	Raw string `json:"Raw"`
}

// Record is one catalog entry.
type Record struct {
	CVENumber     string         `json:"CVENumber"`
	Severity      Severity       `json:"Severity"`
	Grade         Grade          `json:"Grade"`
	Description   string         `json:"Description"`
	FixedVersions []FixedVersion `json:"FixedVersions"`
}

// Catalog is the decoded CVE catalog file.
type Catalog struct {
	CVES []Record `json:"CVES"`
}

// LoadCatalog reads and validates the catalog at path. A missing or
// unreadable file is returned as an error to the caller.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cve catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog JSON.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode cve catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every record and reports all problems at once.
func (c *Catalog) Validate() error {
	var errs error
	for _, r := range c.CVES {
		if _, err := r.Severity.Level(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.CVENumber, err))
		}
		if _, err := r.fixedVersions(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.CVENumber, err))
		}
	}
	return errs
}

func (r Record) fixedVersions() ([]version.Version, error) {
	if len(r.FixedVersions) == 0 {
		return nil, ErrNoFixedVersions
	}
	out := make([]version.Version, 0, len(r.FixedVersions))
	for _, fv := range r.FixedVersions {
		v, err := version.Parse(fv.Raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
