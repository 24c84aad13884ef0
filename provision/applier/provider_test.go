package applier_test

import (
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"

	"github.com/giamma80/gymbro-platform-sub001/provision/applier"
)

func TestNewFSScriptProvider(t *testing.T) {
	c := qt.New(t)

	fsys := fstest.MapFS{
		"002_grant_calorie_balance.sql": &fstest.MapFile{
			Data: []byte("GRANT ALL ON ALL TABLES IN SCHEMA calorie_balance TO anon;"),
		},
		"001_grant_calorie_balance.sql": &fstest.MapFile{
			Data: []byte("GRANT USAGE ON SCHEMA calorie_balance TO anon;"),
		},
		"README.md": &fstest.MapFile{
			Data: []byte("manual workflow notes"),
		},
	}

	provider, err := applier.NewFSScriptProvider(fsys)
	c.Assert(err, qt.IsNil)

	scripts := provider.Scripts()
	c.Assert(scripts, qt.HasLen, 2)
	c.Assert(scripts[0].Number, qt.Equals, 1)
	c.Assert(scripts[1].Number, qt.Equals, 2)
	c.Assert(scripts[0].Schema, qt.Equals, "calorie_balance")
}

func TestNewFSScriptProvider_DuplicateNumber(t *testing.T) {
	c := qt.New(t)

	fsys := fstest.MapFS{
		"001_grant_calorie_balance.sql": &fstest.MapFile{Data: []byte("GRANT ...")},
		"001_grant_meal_tracking.sql":   &fstest.MapFile{Data: []byte("GRANT ...")},
	}

	provider, err := applier.NewFSScriptProvider(fsys)
	c.Assert(err, qt.IsNotNil)
	c.Assert(provider, qt.IsNil)
	c.Assert(err.Error(), qt.Contains, "duplicate script number 1")
}

func TestNewFSScriptProvider_EmptyFilesystem(t *testing.T) {
	c := qt.New(t)

	provider, err := applier.NewFSScriptProvider(fstest.MapFS{})
	c.Assert(err, qt.IsNil)
	c.Assert(provider.Scripts(), qt.HasLen, 0)
}

func TestRegisteredScriptProvider_SortsByNumber(t *testing.T) {
	c := qt.New(t)

	provider := applier.NewRegisteredScriptProvider(
		applier.ScriptFromSQL(3, "x", "GRANT C;"),
		applier.ScriptFromSQL(1, "x", "GRANT A;"),
	)
	provider.Register(applier.ScriptFromSQL(2, "x", "GRANT B;"))

	scripts := provider.Scripts()
	c.Assert(scripts, qt.HasLen, 3)
	c.Assert(scripts[0].Number, qt.Equals, 1)
	c.Assert(scripts[1].Number, qt.Equals, 2)
	c.Assert(scripts[2].Number, qt.Equals, 3)
}
