// Package assetsync imports hairstyle images from the asset bucket into the catalog.
package assetsync

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/kozaktomas/style-genie/internal/ai"
	"github.com/kozaktomas/style-genie/internal/catalog"
	"github.com/kozaktomas/style-genie/internal/constants"
	"github.com/kozaktomas/style-genie/internal/log"
)

const placeholderName = ".emptyFolderPlaceholder"

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true, ".bmp": true,
}

// Status is what happened to one bucket object.
type Status string

const (
	StatusInserted Status = "inserted"
	StatusPlanned  Status = "planned"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// ProgressInfo is reported after each object is handled.
type ProgressInfo struct {
	Current int
	Total   int
	Key     string
	Status  Status
}

type Options struct {
	DryRun       bool
	Concurrency  int
	ShowProgress bool
	OnProgress   func(ProgressInfo)
}

// ItemResult describes the outcome for one object.
type ItemResult struct {
	Key         string
	Status      Status
	Asset       *catalog.HairstyleAsset
	AIGenerated bool
	DuplicateOf string
	Err         error
}

type Result struct {
	Items    []ItemResult
	Inserted int
	Skipped  int
	Failed   int
	Planned  int
}

// Errors returns the per-object failures.
func (r *Result) Errors() []error {
	var errs []error
	for _, item := range r.Items {
		if item.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", item.Key, item.Err))
		}
	}
	return errs
}

type Syncer struct {
	bucket    Bucket
	store     catalog.Writer
	describer ai.Describer
}

// New creates a syncer. A nil describer always uses filename-derived metadata.
func New(bucket Bucket, store catalog.Writer, describer ai.Describer) *Syncer {
	return &Syncer{bucket: bucket, store: store, describer: describer}
}

// Run imports every new image in the bucket. Per-object failures are
// recorded in the result; only a failed listing aborts the run.
func (s *Syncer) Run(ctx context.Context, opts Options) (*Result, error) {
	objects, err := s.bucket.List(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []Object
	for _, obj := range objects {
		if isCandidate(obj.Key) {
			candidates = append(candidates, obj)
		}
	}
	log.Info(log.Fields{"objects": len(objects), "images": len(candidates)}, "Listed asset bucket")

	result := &Result{Items: make([]ItemResult, len(candidates))}
	if len(candidates) == 0 {
		return result, nil
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrency
	}

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.NewOptions(len(candidates),
			progressbar.OptionSetDescription(fmt.Sprintf("Syncing assets (%d workers)", concurrency)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("assets"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		)
	}

	var progressMu sync.Mutex
	done := 0
	report := func(item ItemResult) {
		progressMu.Lock()
		done++
		current := done
		progressMu.Unlock()
		if bar != nil {
			_ = bar.Add(1)
		}
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressInfo{Current: current, Total: len(candidates), Key: item.Key, Status: item.Status})
		}
	}

	seen := newSeenImages()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, obj := range candidates {
		g.Go(func() error {
			item := s.syncOne(gctx, obj, opts.DryRun, seen)
			result.Items[i] = item
			report(item)
			return nil
		})
	}
	_ = g.Wait()

	for _, item := range result.Items {
		switch item.Status {
		case StatusInserted:
			result.Inserted++
		case StatusPlanned:
			result.Planned++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Syncer) syncOne(ctx context.Context, obj Object, dryRun bool, seen *seenImages) ItemResult {
	item := ItemResult{Key: obj.Key}
	fail := func(err error) ItemResult {
		item.Status = StatusFailed
		item.Err = err
		log.Error(log.Fields{"key": obj.Key, "error": err}, "Asset sync failed")
		return item
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	gender := catalog.GenderFromFilename(obj.Key)
	url := s.bucket.PublicURL(obj.Key)
	fallback := fallbackAsset(obj.Key, gender, url)

	exists, err := s.store.ExistsByNameOrURL(ctx, fallback.Name, url)
	if err != nil {
		return fail(err)
	}
	if exists {
		item.Status = StatusSkipped
		log.Debug(log.Fields{"key": obj.Key}, "Skipping asset already in catalog")
		return item
	}

	if dryRun {
		item.Status = StatusPlanned
		item.Asset = fallback
		return item
	}

	data, err := s.bucket.Download(ctx, obj.Key)
	if err != nil {
		return fail(err)
	}

	if hash, err := differenceHash(data, obj.Key); err != nil {
		log.Warn(log.Fields{"key": obj.Key, "error": err}, "Could not fingerprint asset")
	} else if original, ok := seen.claim(hash, obj.Key); !ok {
		item.Status = StatusSkipped
		item.DuplicateOf = original
		log.Info(log.Fields{"key": obj.Key, "duplicate_of": original}, "Skipping duplicate image")
		return item
	}

	asset, generated := s.describe(ctx, obj.Key, data, gender, fallback)
	if err := s.store.Insert(ctx, asset); err != nil {
		return fail(err)
	}

	item.Status = StatusInserted
	item.Asset = asset
	item.AIGenerated = generated
	log.Info(log.Fields{"key": obj.Key, "name": asset.Name, "gender": asset.Gender, "ai": generated}, "Saved asset to catalog")
	return item
}

// describe asks the AI for metadata and falls back to filename-derived metadata on any failure.
func (s *Syncer) describe(ctx context.Context, key string, data []byte, gender catalog.Gender, fallback *catalog.HairstyleAsset) (*catalog.HairstyleAsset, bool) {
	if s.describer == nil {
		return fallback, false
	}

	desc, err := s.describer.DescribeAsset(ctx, data, string(gender))
	if err == nil && (desc == nil || strings.TrimSpace(desc.Name) == "" || len(desc.FaceShapeMatch) == 0) {
		err = errors.New("incomplete description")
	}
	if err != nil {
		log.Warn(log.Fields{"key": key, "error": err}, "AI description failed, using fallback metadata")
		return fallback, false
	}

	asset := *fallback
	asset.Name = strings.TrimSpace(desc.Name)
	asset.FaceShapeMatch = desc.FaceShapeMatch
	if len(desc.Tags) > 0 {
		asset.Tags = desc.Tags
	}
	if desc.Description != "" {
		asset.Description = desc.Description
	}
	return &asset, true
}

func fallbackAsset(key string, gender catalog.Gender, url string) *catalog.HairstyleAsset {
	return &catalog.HairstyleAsset{
		Name:           catalog.TitleFromFilename(key),
		Gender:         gender,
		Tags:           []string{"classic", "everyday", string(gender)},
		FaceShapeMatch: []string{"oval", "round", "square", "heart"},
		ImageURL:       url,
		Description:    fmt.Sprintf("A classic %s style verified by StyleGenie.", gender),
	}
}

func isCandidate(key string) bool {
	if key == "" || strings.HasSuffix(key, "/") || strings.Contains(key, placeholderName) {
		return false
	}
	return imageExtensions[strings.ToLower(path.Ext(key))]
}
