package cve

import (
	"fmt"
	"slices"
	"strings"

	"kscan/pkg/reports"
	"kscan/pkg/version"
)

const (
	Header = "|CVEs|"

	descriptionWordsPerLine = 10
)

// Columns of the CVE table, in display order.
var Columns = []string{"Severity", "CVE Grade", "CVE", "Description", "FixedVersions"}

// IsAffected decides whether a cluster running cluster is exposed to r.
//
// A cluster older than every fix is affected and one at or past the
// newest fix is not. In between, the cluster is affected only when its
// own minor line has a fix with a higher patch; a minor line without any
// fix entry is treated as not affected.
func IsAffected(r Record, cluster version.Version) (bool, error) {
	fixed, err := r.fixedVersions()
	if err != nil {
		return false, fmt.Errorf("%s: %w", r.CVENumber, err)
	}

	minFixed, maxFixed := fixed[0], fixed[0]
	for _, v := range fixed[1:] {
		if version.Compare(v, minFixed) < 0 {
			minFixed = v
		}
		if version.Compare(v, maxFixed) > 0 {
			maxFixed = v
		}
	}

	if version.Compare(cluster, minFixed) < 0 {
		return true, nil
	}
	if version.Compare(cluster, maxFixed) >= 0 {
		return false, nil
	}
	for _, v := range fixed {
		if v.SameMinor(cluster) && v.Patch > cluster.Patch {
			return true, nil
		}
	}
	return false, nil
}

// Affecting returns the records that affect cluster, in catalog order.
func Affecting(c *Catalog, cluster version.Version) ([]Record, error) {
	var out []Record
	for _, r := range c.CVES {
		ok, err := IsAffected(r, cluster)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// BuildTable renders every CVE affecting cluster, highest grade first.
// Records with equal grades keep their catalog order.
func BuildTable(c *Catalog, cluster version.Version) (*reports.Table, error) {
	affecting, err := Affecting(c, cluster)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(affecting, func(a, b Record) int {
		switch {
		case a.Grade > b.Grade:
			return -1
		case a.Grade < b.Grade:
			return 1
		}
		return 0
	})

	t := reports.NewTable(Header, Columns...)
	t.RowLines = true
	for _, r := range affecting {
		t.AddRow(r.Severity.Tone(),
			string(r.Severity),
			r.Grade.String(),
			r.CVENumber,
			wrapWords(r.Description, descriptionWordsPerLine),
			joinFixedVersions(r.FixedVersions),
		)
	}
	return t, nil
}

func wrapWords(s string, perLine int) string {
	words := strings.Fields(s)
	var lines []string
	for len(words) > perLine {
		lines = append(lines, strings.Join(words[:perLine], " "))
		words = words[perLine:]
	}
	if len(words) > 0 {
		lines = append(lines, strings.Join(words, " "))
	}
	return strings.Join(lines, "\n")
}

func joinFixedVersions(fixed []FixedVersion) string {
	raws := make([]string, len(fixed))
	for i, fv := range fixed {
		raws[i] = fv.Raw
	}
	return strings.Join(raws, "\n")
}
