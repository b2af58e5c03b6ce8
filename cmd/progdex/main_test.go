package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/progdex/core"
	"github.com/poiesic/progdex/storage"
)

func TestQueryCommandFlags(t *testing.T) {
	app := newApp()

	var queryCmd *cli.Command
	for _, cmd := range app.Commands {
		if cmd.Name == "query" {
			queryCmd = cmd
			break
		}
	}
	require.NotNil(t, queryCmd)

	t.Run("query text is required", func(t *testing.T) {
		args := []string{"progdex", "query", "--db", "/tmp/test"}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query text")
	})

	t.Run("thesis and no-thesis are mutually exclusive", func(t *testing.T) {
		args := []string{"progdex", "query", "--db", "/tmp/test", "--thesis", "--no-thesis", "machine learning"}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("collection has default value", func(t *testing.T) {
		var collectionFlag *cli.StringFlag
		for _, flag := range queryCmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "collection" {
				collectionFlag = f
				break
			}
		}
		require.NotNil(t, collectionFlag)
		assert.Equal(t, "programs", collectionFlag.Value)
	})
}

func TestBuildCommandFlags(t *testing.T) {
	app := newApp()

	var buildCmd *cli.Command
	for _, cmd := range app.Commands {
		if cmd.Name == "build" {
			buildCmd = cmd
			break
		}
	}
	require.NotNil(t, buildCmd)

	t.Run("csv is required", func(t *testing.T) {
		args := []string{"progdex", "build", "--db", "/tmp/test"}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "csv")
	})

	t.Run("max-retries has default value of 3", func(t *testing.T) {
		var retriesFlag *cli.IntFlag
		for _, flag := range buildCmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "max-retries" {
				retriesFlag = f
				break
			}
		}
		require.NotNil(t, retriesFlag)
		assert.Equal(t, 3, retriesFlag.Value)
	})
}

func TestSetupLogger(t *testing.T) {
	app := newApp()
	// The help action runs after Before, so an invalid level surfaces from
	// any invocation.
	args := []string{"progdex", "--log-level", "loud", "stats"}
	err := app.Run(args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestBuildPredicate(t *testing.T) {
	capture := func(t *testing.T, args []string) storage.Predicate {
		t.Helper()
		var pred storage.Predicate
		app := &cli.App{
			Name: "progdex",
			Commands: []*cli.Command{
				{
					Name: "query",
					Flags: []cli.Flag{
						&cli.StringSliceFlag{Name: "region"},
						&cli.StringSliceFlag{Name: "exclude-region"},
						&cli.StringSliceFlag{Name: "tier"},
						&cli.BoolFlag{Name: "thesis"},
						&cli.BoolFlag{Name: "no-thesis"},
						&cli.BoolFlag{Name: "with-cases"},
					},
					Action: func(c *cli.Context) error {
						pred = buildPredicate(c)
						return nil
					},
				},
			},
		}
		require.NoError(t, app.Run(append([]string{"progdex", "query"}, args...)))
		return pred
	}

	t.Run("no flags matches everything", func(t *testing.T) {
		pred := capture(t, nil)
		assert.True(t, pred.Matches(core.Metadata{Region: "新加坡"}))
		assert.True(t, pred.Matches(core.Metadata{}))
	})

	t.Run("region and tier narrow together", func(t *testing.T) {
		pred := capture(t, []string{"--region", "香港", "--region", "新加坡", "--tier", "T1"})
		assert.True(t, pred.Matches(core.Metadata{Region: "香港", Tier: "T1"}))
		assert.False(t, pred.Matches(core.Metadata{Region: "香港", Tier: "T2"}))
		assert.False(t, pred.Matches(core.Metadata{Region: "英国", Tier: "T1"}))
	})

	t.Run("exclude-region drops listed regions", func(t *testing.T) {
		pred := capture(t, []string{"--exclude-region", "美国"})
		assert.False(t, pred.Matches(core.Metadata{Region: "美国"}))
		assert.True(t, pred.Matches(core.Metadata{Region: "香港"}))
	})

	t.Run("with-cases requires at least one case", func(t *testing.T) {
		pred := capture(t, []string{"--with-cases"})
		assert.True(t, pred.Matches(core.Metadata{AdmissionCaseCount: 3}))
		assert.False(t, pred.Matches(core.Metadata{AdmissionCaseCount: 0}))
	})

	t.Run("no-thesis selects false", func(t *testing.T) {
		pred := capture(t, []string{"--no-thesis"})
		assert.True(t, pred.Matches(core.Metadata{ThesisRequired: false}))
		assert.False(t, pred.Matches(core.Metadata{ThesisRequired: true}))
	})

	t.Run("predicate validates against typed fields", func(t *testing.T) {
		pred := capture(t, []string{"--region", "香港", "--with-cases", "--thesis"})
		assert.NoError(t, pred.Validate())
	})
}

func TestLoadFileConfig(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		cfg, err := LoadFileConfig("")
		require.NoError(t, err)
		assert.Equal(t, "local", cfg.Embedding.Provider)
		assert.Equal(t, 10, cfg.Load.BatchSize)
		assert.Equal(t, 5, cfg.Query.TopK)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "progdex.yaml")
		content := `database:
  path: /data/progdex
embedding:
  provider: openai
  model: embeddinggemma
load:
  batch_size: 25
query:
  top_k: 3
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := LoadFileConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/data/progdex", cfg.Database.Path)
		assert.Equal(t, "openai", cfg.Embedding.Provider)
		assert.Equal(t, 25, cfg.Load.BatchSize)
		assert.Equal(t, 3, cfg.Query.TopK)
		// Unset fields still fall back to defaults.
		assert.Equal(t, "http://localhost:11434/v1", cfg.Embedding.Host)
	})

	t.Run("unknown provider is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "progdex.yaml")
		content := "embedding:\n  provider: volcengine\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		_, err := LoadFileConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown embedding provider")
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "项目名称: MSCS", firstLine("项目名称: MSCS\n所属大学: NUS"))
	assert.Equal(t, "single", firstLine("single"))
}
