package main

import (
	"os"
	"path/filepath"

	"github.com/amonks/cohort/forms"
	"github.com/amonks/cohort/internal/config"
	"github.com/amonks/cohort/internal/logging"
	"github.com/amonks/cohort/internal/paths"
	"github.com/amonks/cohort/internal/prompt"
	"github.com/amonks/cohort/schedule"
	"github.com/amonks/cohort/session"
	"go.uber.org/zap"
)

// app is what one command invocation works with.
type app struct {
	cfg      *config.Config
	stateDir string
	manager  *session.Manager
	forms    *forms.Local
	log      *zap.Logger
}

func openApp() (*app, error) {
	cwd, err := paths.WorkingDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, err
	}

	stateDir, err := paths.ResolveStateDir(stateDirFlag, cfg.Paths.StateDir)
	if err != nil {
		return nil, err
	}
	rosterPath, err := resolvePath(cwd, rosterFlag, cfg.Paths.Roster)
	if err != nil {
		return nil, err
	}
	formsDir, err := resolvePath(cwd, formsDirFlag, cfg.Paths.FormsDir)
	if err != nil {
		return nil, err
	}
	if formsDir == "" {
		formsDir = filepath.Join(stateDir, session.FormsDir)
	}

	logger, err := logging.New(cfg.Log, stateDir, debugFlag)
	if err != nil {
		return nil, err
	}
	local := forms.NewLocal(formsDir)

	manager, err := session.Open(session.Options{
		StateDir:   stateDir,
		RosterPath: rosterPath,
		Forms:      local,
		Selector:   prompt.New(os.Stdin, os.Stdout),
		Logger:     logger,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	logger.Debug("opened cohort",
		zap.String("state_dir", stateDir),
		zap.String("roster", manager.RosterPath()),
		zap.String("forms_dir", formsDir),
	)

	return &app{cfg: cfg, stateDir: stateDir, manager: manager, forms: local, log: logger}, nil
}

func (a *app) Close() {
	_ = a.log.Sync()
}

// resolvePath returns the first non-empty value, with ~ expanded and
// relative paths taken from cwd. It returns "" when every value is empty.
func resolvePath(cwd string, values ...string) (string, error) {
	for _, value := range values {
		if value == "" {
			continue
		}
		expanded, err := paths.ExpandHome(value)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(cwd, expanded)
		}
		return expanded, nil
	}
	return "", nil
}

// dateArg parses the optional date argument at index i.
func dateArg(args []string, i int) (schedule.Date, error) {
	if len(args) <= i {
		return schedule.Date{}, nil
	}
	return schedule.ParseDate(args[i])
}
