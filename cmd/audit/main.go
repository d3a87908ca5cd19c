package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/agent"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/config"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/integration"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/logbook"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/pipeline"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/report"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "new":
		runNew(args)
	case "resume":
		runResume(args)
	case "status":
		runStatus(args)
	case "advance":
		runAdvance(args)
	case "run":
		runPipeline(args)
	case "report":
		runReport(args)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: audit <command> [flags]

Commands:
  new      create an audit session for a client
  resume   reopen a session and print its position
  status   print session progress and the next gate's conditions
  advance  move a session to the next stage (gated)
  run      execute the four audit stages end to end
  report   print the generated audit report

Run "audit <command> -h" for command flags.`)
}

func runNew(args []string) {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	client := fs.String("client", "", "client organization name (required)")
	domain := fs.String("domain", "", "client domain for DNS discovery (optional)")
	stakeholders := fs.String("stakeholders", "", "comma-separated stakeholder contacts for interview follow-ups")
	parseFlags(fs, args)

	if strings.TrimSpace(*client) == "" {
		die("--client is required")
	}
	cfg := loadConfig(*projectDir)
	store := audit.NewRepository(cfg.SessionsDir())
	book := sessionLogbook(cfg, "")
	manager, err := audit.NewSession(store, *client, *domain, audit.WithLogbook(book))
	if err != nil {
		die("create session: %v", err)
	}
	for _, contact := range strings.Split(*stakeholders, ",") {
		if contact = strings.TrimSpace(contact); contact == "" {
			continue
		}
		if err := manager.AddStakeholderContact(contact); err != nil {
			die("record stakeholder: %v", err)
		}
	}
	fmt.Printf("Created session %s for %s\n", manager.AuditID(), manager.ClientName())
	fmt.Printf("State file: %s\n", store.Path(manager.AuditID()))
}

func runResume(args []string) {
	fs := flag.NewFlagSet("resume", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	auditID := fs.String("audit", "", "audit session ID (defaults to the most recent)")
	parseFlags(fs, args)

	cfg := loadConfig(*projectDir)
	manager := loadSession(cfg, *auditID)
	fmt.Println(manager.StageSummary())
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	auditID := fs.String("audit", "", "audit session ID (defaults to the most recent)")
	asJSON := fs.Bool("json", false, "print the full session summary as JSON")
	parseFlags(fs, args)

	cfg := loadConfig(*projectDir)
	manager := loadSession(cfg, *auditID)
	if *asJSON {
		data, err := json.MarshalIndent(manager.ExportSummary(), "", "  ")
		if err != nil {
			die("encode summary: %v", err)
		}
		fmt.Println(string(data))
		return
	}
	fmt.Println(manager.StageSummary())

	state := manager.State()
	current := manager.CurrentStage()
	if current == audit.StageDelivery {
		fmt.Println("Delivery is the final stage.")
		return
	}
	gate := audit.CheckGate(state, current+1)
	if gate.Passed {
		fmt.Printf("Gate to %s is open.\n", gate.Target)
		return
	}
	fmt.Printf("Gate to %s has %d unmet condition(s):\n", gate.Target, len(gate.Conditions))
	for _, condition := range gate.Conditions {
		fmt.Printf("  - %s\n", condition)
	}
}

func runAdvance(args []string) {
	fs := flag.NewFlagSet("advance", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	auditID := fs.String("audit", "", "audit session ID (defaults to the most recent)")
	stage := fs.Int("stage", 0, "target stage ordinal 1-4 (defaults to the next stage)")
	force := fs.Bool("force", false, "advance even when the gate is not satisfied")
	parseFlags(fs, args)

	cfg := loadConfig(*projectDir)
	manager := loadSession(cfg, *auditID)

	target := manager.CurrentStage() + 1
	if *stage != 0 {
		parsed, err := audit.ParseStage(*stage)
		if err != nil {
			die("%v", err)
		}
		target = parsed
	}
	if !target.Valid() {
		die("session is already at the final stage")
	}
	result, err := manager.Advance(target, *force)
	if err != nil {
		die("advance: %v", err)
	}
	if !result.Passed {
		fmt.Printf("Gate to %s blocked by %d condition(s):\n", result.Target, len(result.Conditions))
		for _, condition := range result.Conditions {
			fmt.Printf("  - %s\n", condition)
		}
		os.Exit(1)
	}
	fmt.Printf("Session %s is now at %s\n", manager.AuditID(), manager.CurrentStage())
}

func runPipeline(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	auditID := fs.String("audit", "", "audit session ID (defaults to the most recent)")
	inventory := fs.String("inventory", "", "path to the tool inventory CSV (required)")
	observations := fs.String("observations", "", "YAML file with observed integration health (optional)")
	timeout := fs.Duration("timeout", 10*time.Minute, "overall pipeline deadline")
	parseFlags(fs, args)

	if strings.TrimSpace(*inventory) == "" {
		die("--inventory is required")
	}
	cfg := loadConfig(*projectDir)
	manager := loadSession(cfg, *auditID)
	book := sessionLogbook(cfg, manager.AuditID())

	opts := []pipeline.Option{pipeline.WithLogbook(book)}
	if key := cfg.APIKey(); key != "" {
		client, err := agent.NewClient(cfg.Project.LLM, key, agent.WithLogbook(book))
		if err != nil {
			die("agent client: %v", err)
		}
		opts = append(opts, pipeline.WithRunner(client))
	} else {
		fmt.Printf("No API key in %s; report sections fall back to changelog text.\n", cfg.Project.LLM.APIKeyEnv)
	}
	observed, err := readObservations(*observations)
	if err != nil {
		die("load observations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	p := pipeline.New(cfg, manager, opts...)
	path, err := p.Run(ctx, *inventory, observed)
	if err != nil {
		die("run pipeline: %v", err)
	}
	fmt.Println(manager.StageSummary())
	fmt.Printf("Report written to %s\n", path)
}

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	pathOnly := fs.Bool("path", false, "print the report location instead of its contents")
	parseFlags(fs, args)

	cfg := loadConfig(*projectDir)
	path := filepath.Join(cfg.OutputDir(), report.FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			die("no report at %s; run the pipeline first", path)
		}
		die("read report: %v", err)
	}
	if *pathOnly {
		fmt.Println(path)
		return
	}
	fmt.Print(string(data))
}

func parseFlags(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
}

func loadConfig(projectDir string) *config.Config {
	project := projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	if err := config.InitAuditDir(absoluteProject); err != nil {
		die("init .audit: %v", err)
	}
	cfg, err := config.NewConfig(absoluteProject)
	if err != nil {
		die("load config: %v", err)
	}
	return cfg
}

// loadSession resolves the session to operate on. Without an explicit ID the
// most recently updated session wins; corrupt files still fail loudly when
// named directly.
func loadSession(cfg *config.Config, auditID string) *audit.Manager {
	store := audit.NewRepository(cfg.SessionsDir())
	id := strings.TrimSpace(auditID)
	if id == "" {
		states, err := store.List()
		if err != nil {
			die("list sessions: %v", err)
		}
		if len(states) == 0 {
			die("no sessions in %s; create one with `audit new`", cfg.SessionsDir())
		}
		id = states[0].AuditID
	}
	book := sessionLogbook(cfg, id)
	manager, err := audit.LoadSession(store, id, audit.WithLogbook(book))
	if err != nil {
		die("load session %s: %v", id, err)
	}
	return manager
}

func sessionLogbook(cfg *config.Config, auditID string) *logbook.Logbook {
	if auditID == "" {
		book, err := logbook.New(filepath.Join(cfg.LogsDir(), "audit.log"))
		if err != nil {
			return nil
		}
		return book
	}
	book, err := logbook.ForSession(cfg.LogsDir(), auditID)
	if err != nil {
		return nil
	}
	return book
}

type observedIntegration struct {
	Status          string  `yaml:"status"`
	IntegrationType string  `yaml:"integration_type"`
	HealthScore     int     `yaml:"health_score"`
	ErrorRate       float64 `yaml:"error_rate"`
	LastSync        string  `yaml:"last_sync"`
}

// readObservations parses a YAML map keyed by integration.PairKey output
// ("tool a|tool b") into checker observations.
func readObservations(path string) (map[string]integration.Observation, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var raw map[string]observedIntegration
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	observed := make(map[string]integration.Observation, len(raw))
	for pair, entry := range raw {
		obs := integration.Observation{
			Status:          entry.Status,
			IntegrationType: entry.IntegrationType,
			HealthScore:     entry.HealthScore,
			ErrorRate:       entry.ErrorRate,
		}
		if entry.LastSync != "" {
			lastSync, err := time.Parse(time.RFC3339, entry.LastSync)
			if err != nil {
				return nil, fmt.Errorf("parse last_sync for %s: %w", pair, err)
			}
			obs.LastSync = lastSync
		}
		observed[pair] = obs
	}
	return observed, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
