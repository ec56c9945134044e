package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/nicky-ayoub/cardstack/internal/config"
	"github.com/nicky-ayoub/cardstack/internal/service"
)

func parse(t *testing.T, args ...string) (*cobra.Command, *flagValues) {
	t.Helper()
	fv := &flagValues{}
	cmd := &cobra.Command{Use: "test"}
	addFlags(cmd, fv)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd, fv
}

func TestLoadConfigLayers(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")

	tests := []struct {
		name   string
		flags  []string
		args   []string
		source string
		dir    string
		width  int
	}{
		{"Defaults", []string{"--config", missing}, nil, config.SourceStrapi, "", 1280},
		{"DirFlag", []string{"--config", missing, "--dir", "pics", "--width", "640"}, nil, config.SourceDir, "pics", 640},
		{"Positional", []string{"--config", missing, "--dir", "pics"}, []string{"photos"}, config.SourceDir, "photos", 1280},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, fv := parse(t, tt.flags...)
			cfg, err := loadConfig(cmd, fv, tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Source != tt.source || cfg.Dir != tt.dir || cfg.Display.Width != tt.width {
				t.Errorf("got source %q dir %q width %d", cfg.Source, cfg.Dir, cfg.Display.Width)
			}
		})
	}
}

func TestLoadConfigRejectsBadFlags(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")
	for _, flags := range [][]string{
		{"--config", missing, "--device", "joystick"},
		{"--config", missing, "--source", "ftp"},
		{"--config", missing, "--height", "-1"},
	} {
		cmd, fv := parse(t, flags...)
		if _, err := loadConfig(cmd, fv, nil); err == nil {
			t.Errorf("%v: expected an error", flags)
		}
	}
}

func TestNewProvider(t *testing.T) {
	cfg := config.Default()
	images := service.NewImageService(nil)

	if p, label := newProvider(cfg, images); label != "strapi" {
		t.Errorf("label = %q", label)
	} else if _, ok := p.(*service.StrapiProvider); !ok {
		t.Errorf("provider = %T", p)
	}

	cfg.Source, cfg.Dir = config.SourceDir, "pics"
	if p, label := newProvider(cfg, images); label != "pics" {
		t.Errorf("label = %q", label)
	} else if _, ok := p.(*service.ScannerService); !ok {
		t.Errorf("provider = %T", p)
	}
}

func TestListEmptyDir(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list", "--config", filepath.Join(t.TempDir(), "none.yaml"), t.TempDir()})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "TITLE") {
		t.Errorf("output = %q", out.String())
	}
}
