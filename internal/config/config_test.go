package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "SOURCE_BASE_URL", "SOURCE_TOKEN", "SOURCE_PAGE_SIZE",
		"CLOUD_BASE_URL", "CLOUD_TOKEN", "UPLOAD_FOLDER", "UPLOAD_OVERWRITE",
		"REQUEST_TIMEOUT", "MAX_IN_FLIGHT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q; want 8080", cfg.Port)
	}
	if cfg.UploadFolder != "/photo-backup" {
		t.Errorf("UploadFolder = %q; want /photo-backup", cfg.UploadFolder)
	}
	if cfg.UploadOverwrite {
		t.Error("UploadOverwrite = true; want false")
	}
	if cfg.PageSize != 100 {
		t.Errorf("PageSize = %d; want 100", cfg.PageSize)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v; want 30s", cfg.RequestTimeout)
	}
	if cfg.MaxInFlight != 8 {
		t.Errorf("MaxInFlight = %d; want 8", cfg.MaxInFlight)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CLOUD_TOKEN", "tok")
	t.Setenv("UPLOAD_FOLDER", "/mirror")
	t.Setenv("UPLOAD_OVERWRITE", "true")
	t.Setenv("SOURCE_PAGE_SIZE", "50")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	cfg := Load()
	if cfg.Port != "9090" || cfg.CloudToken != "tok" || cfg.UploadFolder != "/mirror" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.UploadOverwrite {
		t.Error("UploadOverwrite = false; want true")
	}
	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d; want 50", cfg.PageSize)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v; want 5s", cfg.RequestTimeout)
	}
}

func TestLoadIgnoresMalformedEnvValues(t *testing.T) {
	t.Setenv("SOURCE_PAGE_SIZE", "lots")
	t.Setenv("UPLOAD_OVERWRITE", "maybe")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg := Load()
	if cfg.PageSize != 100 {
		t.Errorf("PageSize = %d; want default 100", cfg.PageSize)
	}
	if cfg.UploadOverwrite {
		t.Error("UploadOverwrite = true; want default false")
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v; want default 30s", cfg.RequestTimeout)
	}
}

func TestLoadWithFileOverlay(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("UPLOAD_FOLDER", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("port: \"7070\"\nuploadFolder: /from-file\nmaxInFlight: 4\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("Port = %q; want file value 7070", cfg.Port)
	}
	if cfg.UploadFolder != "/from-file" {
		t.Errorf("UploadFolder = %q; want /from-file", cfg.UploadFolder)
	}
	if cfg.MaxInFlight != 4 {
		t.Errorf("MaxInFlight = %d; want 4", cfg.MaxInFlight)
	}
}

func TestLoadWithFileMissing(t *testing.T) {
	cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFile: %v", err)
	}
	if cfg.Port == "" {
		t.Error("missing file must still yield defaults")
	}
}

func TestLoadWithFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadWithFile(path); err == nil {
		t.Fatal("LoadWithFile with malformed YAML: want error")
	}
}
