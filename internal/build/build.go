// Package build orchestrates a full bundle build (spec.md §5): decoding
// the verification keys, running the per-level crypto pipeline with a
// bounded worker pool, then assembling one HTML bundle per language.
// Writing the results to disk is left to the caller.
//
// The fan-out/first-error pattern is adapted from drand-drand's
// dkg/network.go (GrpcNetwork.send): a WaitGroup across per-level
// goroutines, generalized here with a semaphore so only runtime.NumCPU()
// levels decode images concurrently, and with sync.Once to keep only the
// first failure (fail-fast, per spec.md §5: "a failure at any point aborts
// the entire build").
package build

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sync"

	"github.com/imagegate/gatebuilder/internal/bgerrors"
	"github.com/imagegate/gatebuilder/internal/bundle"
	"github.com/imagegate/gatebuilder/internal/config"
	"github.com/imagegate/gatebuilder/internal/derive"
	"github.com/imagegate/gatebuilder/internal/hintcrypto"
	"github.com/imagegate/gatebuilder/internal/imageload"
	"github.com/imagegate/gatebuilder/internal/keys"
	"github.com/imagegate/gatebuilder/internal/levelcrypto"
	"github.com/imagegate/gatebuilder/internal/phash"
)

// Logger is the subset of *logging.Logger this package calls, so tests
// can supply a stub without wiring op/go-logging.
type Logger interface {
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
}

// Inputs collects everything a build needs that isn't pure config: the
// parsed GlobalConfig, the raw key records, and the external
// collaborators for image decoding and CSV fetching (spec.md §1).
type Inputs struct {
	Config      config.GlobalConfig
	KeyRecords  []keys.Record
	Images      imageload.Loader
	CSVFetcher  hintcrypto.CSVFetcher
	Templates   map[string][]byte // index-<lang>.html contents, keyed by language
	OutDir      string
	BuildID     string
	GeneratedAt string
	Log         Logger
}

// Outputs is what a successful build produces, ready for the caller to
// write to disk (or re-serve, or upload).
type Outputs struct {
	Languages map[string][]byte // lang -> finished HTML
	Manifest  []byte            // build-manifest.json contents
}

type levelResult struct {
	wrappedKey    []byte
	levelSalt     derive.Key16
	levelKey      derive.Key16
	thumbnailTail []byte
	sealedData    []byte
}

// Run executes the full pipeline and returns the finished per-language
// HTML bundles and build manifest, without writing anything to disk
// (callers use bundle.WriteLanguageBundle / bundle.WriteManifest, or
// s3deploy, for that).
func Run(ctx context.Context, in Inputs) (Outputs, error) {
	cfg := in.Config
	vks, err := keys.LoadVerificationKeys(in.KeyRecords, cfg.LevelCount)
	if err != nil {
		return Outputs{}, err
	}

	hintKeys, hintShares, err := hintcrypto.Setup(cfg.GameRandomSalt, cfg.HintThresholds, cfg.LevelCount)
	if err != nil {
		return Outputs{}, err
	}

	thumbnails, results, err := runLevelPipeline(ctx, in, vks)
	if err != nil {
		return Outputs{}, err
	}

	header := levelcrypto.ThumbnailHeader(thumbnails)
	if in.Log != nil {
		in.Log.Infof("thumbnail header factored to %d shared bytes across %d levels", len(header), cfg.LevelCount)
	}

	for i := 0; i < cfg.LevelCount; i++ {
		tail, err := levelcrypto.ThumbnailTail(thumbnails[i], header)
		if err != nil {
			return Outputs{}, bgerrors.Wrap(bgerrors.ErrImage, fmt.Sprintf("level %d", i), err)
		}
		secret := levelcrypto.AssembleSecret(vks[i].PrivateKeyJWK, hintcrypto.HintSharesForLevel(hintShares, i), tail)
		sealed, err := levelcrypto.SealLevelSecret(results[i].levelKey, results[i].levelSalt, secret)
		if err != nil {
			return Outputs{}, err
		}
		results[i].sealedData = sealed
		results[i].thumbnailTail = tail
	}

	languages := make(map[string][]byte, len(cfg.Languages))
	for _, lang := range cfg.Languages {
		html, err := buildLanguage(ctx, in, cfg, lang, vks, hintKeys, results, header)
		if err != nil {
			return Outputs{}, err
		}
		languages[lang] = html
	}

	manifest := bundle.Manifest{
		BuildID:               in.BuildID,
		Languages:             cfg.Languages,
		LevelCount:            cfg.LevelCount,
		ThumbnailHeaderLength: len(header),
		GeneratedAt:           in.GeneratedAt,
	}
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return Outputs{}, fmt.Errorf("build: marshaling manifest: %w", err)
	}

	return Outputs{Languages: languages, Manifest: manifestJSON}, nil
}

// runLevelPipeline runs steps 1-6 of spec.md §4.5 for every level, fanned
// out across a pool of runtime.NumCPU() workers (the per-level work is
// I/O-bound: file reads and image decoding). Output slices are filled by
// index, never by append order, so results are identical regardless of
// goroutine scheduling (spec.md §5, P1).
func runLevelPipeline(ctx context.Context, in Inputs, vks []keys.VerificationKey) ([][]byte, []levelResult, error) {
	cfg := in.Config
	thumbnails := make([][]byte, cfg.LevelCount)
	results := make([]levelResult, cfg.LevelCount)

	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	for i := 0; i < cfg.LevelCount; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				once.Do(func() { firstErr = ctx.Err() })
				return
			}
			defer func() { <-sem }()

			thumb, res, err := buildLevel(cfg.GameRandomSalt, i, in.Images)
			if err != nil {
				once.Do(func() { firstErr = err })
				return
			}
			thumbnails[i] = thumb
			results[i] = res
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, nil, firstErr
	}
	return thumbnails, results, nil
}

func buildLevel(gameRandomSalt string, i int, images imageload.Loader) ([]byte, levelResult, error) {
	levelSalt := derive.LevelSalt(gameRandomSalt, i)
	levelKey := derive.LevelKey(gameRandomSalt, i)

	img, err := images.LoadImage(i + 1)
	if err != nil {
		return nil, levelResult{}, err
	}
	hash, err := phash.Hash(img)
	if err != nil {
		return nil, levelResult{}, bgerrors.Wrap(bgerrors.ErrImage, fmt.Sprintf("level %d", i), err)
	}
	encryptionKey := levelcrypto.EncryptionKey(hash[:], levelSalt)
	wrappedKey, err := levelcrypto.WrapLevelKey(encryptionKey, levelSalt, levelKey)
	if err != nil {
		return nil, levelResult{}, err
	}

	thumbSrc, err := images.LoadThumbnailSource(i + 1)
	if err != nil {
		return nil, levelResult{}, err
	}
	thumb, err := levelcrypto.Thumbnail(thumbSrc)
	if err != nil {
		return nil, levelResult{}, err
	}

	return thumb, levelResult{wrappedKey: wrappedKey, levelSalt: levelSalt, levelKey: levelKey}, nil
}

func buildLanguage(
	ctx context.Context,
	in Inputs,
	cfg config.GlobalConfig,
	lang string,
	vks []keys.VerificationKey,
	hintKeys []derive.Key16,
	results []levelResult,
	thumbnailHeader []byte,
) ([]byte, error) {
	languageSalt := derive.LanguageSalt(cfg.GameRandomSalt, lang)

	var csvLevels map[int][]string
	if in.CSVFetcher != nil {
		raw, err := in.CSVFetcher.Fetch(ctx, lang)
		if err != nil {
			return nil, err
		}
		csvLevels, err = hintcrypto.ParseCSV(raw)
		if err != nil {
			return nil, err
		}
	}

	levels := make([]bundle.Level, cfg.LevelCount)
	for i := 0; i < cfg.LevelCount; i++ {
		rawHints, err := hintcrypto.HintsForLevel(csvLevels, i+1)
		if err != nil {
			return nil, err
		}
		encHints, err := hintcrypto.EncryptHints(rawHints, hintKeys, languageSalt, results[i].levelSalt, in.Log)
		if err != nil {
			return nil, err
		}
		levels[i] = bundle.Level{
			Key:       results[i].wrappedKey,
			Data:      results[i].sealedData,
			Hints:     encHints,
			PublicKey: vks[i].PublicKeySPKI,
		}
	}

	gd := bundle.GameData{
		Levels:          levels,
		HintThresholds:  cfg.HintThresholds,
		HintSalt:        languageSalt[:],
		ThumbnailHeader: thumbnailHeader,
		UnlockedLevels:  cfg.UnlockedLevels,
	}
	gameDataJSON, err := json.Marshal(gd)
	if err != nil {
		return nil, fmt.Errorf("build: marshaling game data for %q: %w", lang, err)
	}

	template, ok := in.Templates[lang]
	if !ok {
		return nil, bgerrors.New(bgerrors.ErrTemplate, fmt.Sprintf("no template loaded for language %q", lang))
	}
	return bundle.Inject(template, gameDataJSON)
}
