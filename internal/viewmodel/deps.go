// Package viewmodel holds the live state behind each page: it subscribes to
// the user's documents, re-derives the page data on every snapshot and runs
// the page's form actions.
package viewmodel

import (
	"time"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/calc"
	"unimeal-backend-go/internal/db"
	"unimeal-backend-go/internal/prefs"
)

// Deps are the collaborators shared by every page of one user.
type Deps struct {
	Repos      *db.Repositories
	Prefs      prefs.Store
	Thresholds calc.Thresholds
	Now        func() time.Time
	Logger     *zap.Logger
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

func (d Deps) thresholds() calc.Thresholds {
	if d.Thresholds == (calc.Thresholds{}) {
		return calc.DefaultThresholds()
	}
	return d.Thresholds
}

func (d Deps) prefs() prefs.Store {
	if d.Prefs != nil {
		return d.Prefs
	}
	return prefs.NewMemoryStore()
}
