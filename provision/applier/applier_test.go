package applier_test

import (
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"

	"github.com/giamma80/gymbro-platform-sub001/provision/applier"
)

func TestNewApplier(t *testing.T) {
	c := qt.New(t)

	provider := applier.NewRegisteredScriptProvider(
		applier.ScriptFromSQL(1, "meal_tracking", "GRANT USAGE ON SCHEMA meal_tracking TO anon;"),
	)

	a := applier.NewApplier(nil, "meal-tracking", provider)
	c.Assert(a, qt.IsNotNil)
	c.Assert(a.Provider(), qt.Equals, applier.ScriptProvider(provider))
}

func TestApplier_WithLogger(t *testing.T) {
	c := qt.New(t)

	a := applier.NewApplier(nil, "meal-tracking", applier.NewRegisteredScriptProvider())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	withLogger := a.WithLogger(logger)

	c.Assert(withLogger, qt.IsNotNil)
	c.Assert(withLogger, qt.Not(qt.Equals), a)
	c.Assert(withLogger.Provider(), qt.Equals, a.Provider())
}

func TestNewFSApplier(t *testing.T) {
	c := qt.New(t)

	fsys := fstest.MapFS{
		"001_grant_meal_tracking.sql": &fstest.MapFile{
			Data: []byte("GRANT USAGE ON SCHEMA meal_tracking TO anon;"),
		},
	}

	a, err := applier.NewFSApplier(nil, "meal-tracking", fsys)
	c.Assert(err, qt.IsNil)
	c.Assert(a.Provider().Scripts(), qt.HasLen, 1)
}

func TestNewFSApplier_DuplicateNumber(t *testing.T) {
	c := qt.New(t)

	fsys := fstest.MapFS{
		"001_grant_meal_tracking.sql": &fstest.MapFile{Data: []byte("GRANT ...")},
		"001_grant_ai_coach.sql":      &fstest.MapFile{Data: []byte("GRANT ...")},
	}

	a, err := applier.NewFSApplier(nil, "meal-tracking", fsys)
	c.Assert(err, qt.IsNotNil)
	c.Assert(a, qt.IsNil)
}
