// Package doctor performs health checks over the audit directory tree.
package doctor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/confsync-project/confsync/internal/audit"
	"github.com/confsync-project/confsync/pkg/model"
)

// Finding represents a detected issue.
type Finding struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Path        string `json:"path,omitempty"`
}

// Result contains doctor check results.
type Result struct {
	Healthy  bool      `json:"healthy"`
	Findings []Finding `json:"findings"`
}

// Doctor performs audit-tree health checks.
type Doctor struct {
	auditDir string
}

// NewDoctor creates a new doctor.
func NewDoctor(auditDir string) *Doctor {
	return &Doctor{auditDir: auditDir}
}

// Check runs all diagnostic checks.
func (d *Doctor) Check() (*Result, error) {
	result := &Result{Healthy: true}

	// 1. Audit directory exists and is writable
	d.checkAuditDir(result)

	// 2. Ledger lines parse as JSON
	d.checkLedger(result)

	// 3. Snapshot filenames carry parseable timestamps
	// 4. Import sets have their local and before snapshots
	// 5. No orphan tmp files left behind by interrupted writes
	d.checkSnapshots(result)

	for _, f := range result.Findings {
		if f.Severity == "critical" || f.Severity == "error" {
			result.Healthy = false
		}
	}
	return result, nil
}

func (d *Doctor) checkAuditDir(result *Result) {
	info, err := os.Stat(d.auditDir)
	if os.IsNotExist(err) {
		result.Findings = append(result.Findings, Finding{
			Category:    "layout",
			Description: "audit directory does not exist yet (created on first store)",
			Severity:    "info",
			Path:        d.auditDir,
		})
		return
	}
	if err != nil {
		result.Findings = append(result.Findings, Finding{
			Category:    "layout",
			Description: fmt.Sprintf("cannot stat audit directory: %v", err),
			Severity:    "critical",
			Path:        d.auditDir,
		})
		return
	}
	if !info.IsDir() {
		result.Findings = append(result.Findings, Finding{
			Category:    "layout",
			Description: "audit path is not a directory",
			Severity:    "critical",
			Path:        d.auditDir,
		})
		return
	}

	probe, err := os.CreateTemp(d.auditDir, ".confsync-doctor-*")
	if err != nil {
		result.Findings = append(result.Findings, Finding{
			Category:    "layout",
			Description: fmt.Sprintf("audit directory is not writable: %v", err),
			Severity:    "critical",
			Path:        d.auditDir,
		})
		return
	}
	probe.Close()
	os.Remove(probe.Name())
}

func (d *Doctor) checkLedger(result *Result) {
	path := filepath.Join(d.auditDir, audit.LedgerFileName)
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		result.Findings = append(result.Findings, Finding{
			Category:    "ledger",
			Description: fmt.Sprintf("cannot open ledger: %v", err),
			Severity:    "error",
			Path:        path,
		})
		return
	}
	defer file.Close()

	malformed := 0
	lineNo := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lineNo++
		if !json.Valid(scanner.Bytes()) {
			malformed++
		}
	}
	if err := scanner.Err(); err != nil {
		result.Findings = append(result.Findings, Finding{
			Category:    "ledger",
			Description: fmt.Sprintf("cannot read ledger: %v", err),
			Severity:    "error",
			Path:        path,
		})
		return
	}
	if malformed > 0 {
		result.Findings = append(result.Findings, Finding{
			Category:    "ledger",
			Description: fmt.Sprintf("%d of %d ledger lines are not valid JSON", malformed, lineNo),
			Severity:    "error",
			Path:        path,
		})
	}
}

func (d *Doctor) checkSnapshots(result *Result) {
	snapshotsDir := filepath.Join(d.auditDir, "snapshots")
	typeDirs, err := os.ReadDir(snapshotsDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Findings = append(result.Findings, Finding{
				Category:    "snapshots",
				Description: fmt.Sprintf("cannot list snapshots directory: %v", err),
				Severity:    "error",
				Path:        snapshotsDir,
			})
		}
		return
	}

	for _, typeDir := range typeDirs {
		if !typeDir.IsDir() {
			continue
		}
		d.checkItemType(result, filepath.Join(snapshotsDir, typeDir.Name()))
	}
}

func (d *Doctor) checkItemType(result *Result, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Findings = append(result.Findings, Finding{
			Category:    "snapshots",
			Description: fmt.Sprintf("cannot list item type directory: %v", err),
			Severity:    "error",
			Path:        dir,
		})
		return
	}

	groups := make(map[string]map[string]bool)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(name, ".confsync-tmp-") {
			result.Findings = append(result.Findings, Finding{
				Category:    "snapshots",
				Description: "orphan temp file from an interrupted write",
				Severity:    "warning",
				Path:        filepath.Join(dir, name),
			})
			continue
		}
		if filepath.Ext(name) != ".json" {
			continue
		}

		if model.IsImportFile(name) {
			key := model.ImportGroupKey(name)
			if groups[key] == nil {
				groups[key] = make(map[string]bool)
			}
			base := strings.TrimSuffix(name, ".json")
			groups[key][strings.TrimPrefix(base, key)] = true
			continue
		}

		if _, err := model.ParseFilenameTime(name); err != nil {
			result.Findings = append(result.Findings, Finding{
				Category:    "snapshots",
				Description: "snapshot timestamp is unparsable; retention will never prune it",
				Severity:    "warning",
				Path:        filepath.Join(dir, name),
			})
		}
	}

	// Within an import set, local and remote_before always exist;
	// remote_after is legitimately absent for dry runs.
	for key, members := range groups {
		if !members[model.ImportLocalSuffix] || !members[model.ImportRemoteBeforeSuffix] {
			result.Findings = append(result.Findings, Finding{
				Category:    "imports",
				Description: fmt.Sprintf("import set %s is missing its local or before snapshot", key),
				Severity:    "error",
				Path:        dir,
			})
		}
	}
}
