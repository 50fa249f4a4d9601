package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/commons-systems/photosync/internal/cloud"
	"github.com/commons-systems/photosync/internal/collection"
	"github.com/commons-systems/photosync/internal/config"
	"github.com/commons-systems/photosync/internal/photo"
	"github.com/commons-systems/photosync/internal/source"
	"github.com/commons-systems/photosync/internal/transport"
	"github.com/commons-systems/photosync/internal/ui"
	"github.com/commons-systems/photosync/internal/uploader"
)

const version = "0.1.0"

var (
	versionFlag = flag.Bool("version", false, "Show version")

	owner      = flag.String("owner", "", "Account reference: empty/me, numeric id, or handle")
	folder     = flag.String("folder", "", "Cloud folder to upload into (enables upload)")
	token      = flag.String("token", "", "Cloud-storage OAuth token (or CLOUD_TOKEN env)")
	selectIDs  = flag.String("select", "", "Comma-separated photo ids to upload (default: all)")
	listFiles  = flag.Bool("list", false, "List files already stored in the cloud and exit")
	demoMode   = flag.Bool("demo", false, "Skip the photo source and use the demo dataset")
	timeout    = flag.Duration("timeout", 30*time.Second, "Per-request timeout")
	overwrite  = flag.Bool("overwrite", false, "Overwrite existing files at the destination path")
	verbose    = flag.Bool("verbose", false, "Show per-task progress while uploading")
	configFile = flag.String("config", "", "Optional YAML config file")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `photosync - pull photos from a hosting account and back them up to cloud storage

Usage:
  photosync [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Fetch and list an account's photos
  photosync -owner 12345

  # Back up everything to /photo-backup
  photosync -owner 12345 -folder /photo-backup -token $CLOUD_TOKEN

  # Retry two specific photos
  photosync -owner 12345 -folder /photo-backup -select 101,102

`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("photosync version %s\n", version)
		os.Exit(0)
	}

	// .env is optional; flags and the environment win over it.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.LoadWithFile(*configFile)
	if err != nil {
		return err
	}
	if *token != "" {
		cfg.CloudToken = *token
	}
	if *folder != "" {
		cfg.UploadFolder = *folder
	}
	if *overwrite {
		cfg.UploadOverwrite = true
	}
	cfg.RequestTimeout = *timeout

	httpTransport := transport.NewHTTPTransport(nil)
	cloudOpts := []cloud.Option{
		cloud.WithToken(cfg.CloudToken),
		cloud.WithTimeout(cfg.RequestTimeout),
	}
	if cfg.CloudBaseURL != "" {
		cloudOpts = append(cloudOpts, cloud.WithBaseURL(cfg.CloudBaseURL))
	}
	cloudClient := cloud.NewClient(httpTransport, cloudOpts...)

	if *listFiles {
		files, err := cloudClient.List(ctx)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Printf("%-40s %10d  %s\n", f.Path, f.Size, f.Created)
		}
		return nil
	}

	photos, err := fetchPhotos(ctx, cfg)
	if err != nil {
		return err
	}

	store := collection.NewStore()
	store.Replace(photos)
	ui.PrintPhotoList(os.Stdout, store.Photos())

	if *folder == "" {
		return nil
	}

	if err := selectPhotos(store); err != nil {
		return err
	}

	tasks := buildTasks(store)
	if len(tasks) == 0 {
		return fmt.Errorf("nothing selected to upload")
	}

	orch, err := uploader.NewOrchestrator(
		cloudClient,
		uploader.WithFolder(cfg.UploadFolder),
		uploader.WithOverwrite(cfg.UploadOverwrite),
	)
	if err != nil {
		return err
	}

	resultCh, progressCh := orch.RunBatchAsync(ctx, tasks)
	for p := range progressCh {
		if *verbose {
			fmt.Printf("  [%d/%d] %s: %s\n", p.Completed, p.Total, p.File, p.Status)
		}
	}
	result := <-resultCh
	ui.PrintBatchSummary(os.Stdout, result)

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", result.Failed, result.Total)
	}
	return nil
}

func fetchPhotos(ctx context.Context, cfg config.Config) ([]photo.Photo, error) {
	if *demoMode {
		return source.DemoPhotos(source.DemoCount), nil
	}

	callbackTransport := transport.NewCallbackTransport(
		transport.WithMaxInFlight(cfg.MaxInFlight),
	)
	sourceOpts := []source.Option{
		source.WithToken(cfg.SourceToken),
		source.WithPageSize(cfg.PageSize),
		source.WithTimeout(cfg.RequestTimeout),
	}
	if cfg.SourceBaseURL != "" {
		sourceOpts = append(sourceOpts, source.WithBaseURL(cfg.SourceBaseURL))
	}
	client := source.NewClient(callbackTransport, sourceOpts...)
	return client.FetchPhotos(ctx, *owner)
}

// selectPhotos applies the -select flag, defaulting to everything.
func selectPhotos(store *collection.Store) error {
	if *selectIDs == "" {
		store.SelectAll()
		return nil
	}
	for _, field := range strings.Split(*selectIDs, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid photo id %q in -select", field)
		}
		on := true
		if !store.ToggleSelect(id, &on) {
			return fmt.Errorf("photo %d not in the fetched collection", id)
		}
	}
	return nil
}

// buildTasks derives destination names from photo ids.
func buildTasks(store *collection.Store) []*uploader.Task {
	selected := store.SnapshotSelected()
	tasks := make([]*uploader.Task, 0, len(selected))
	for _, p := range selected {
		name := fmt.Sprintf("photo_%d_%d.jpg", p.OwnerID, p.ID)
		tasks = append(tasks, uploader.NewTask(p, name))
	}
	return tasks
}
