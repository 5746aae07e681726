// Command gatebuilder builds the encrypted level bundle for an
// image-gated puzzle game: one HTML file per configured language, each
// carrying every level's sealed secret, hints, and verification key.
//
// Usage mirrors kryptco-kr's src/kr/kr.go: a urfave/cli v1 App with a
// default action plus a handful of flags, rather than a subcommand tree
// (this tool has one real job, unlike kr's many daemon-control verbs).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/blang/semver"
	"github.com/op/go-logging"
	"github.com/satori/go.uuid"
	"github.com/urfave/cli"

	"github.com/imagegate/gatebuilder/internal/build"
	"github.com/imagegate/gatebuilder/internal/bundle"
	"github.com/imagegate/gatebuilder/internal/config"
	"github.com/imagegate/gatebuilder/internal/genkeys"
	"github.com/imagegate/gatebuilder/internal/hintcrypto"
	"github.com/imagegate/gatebuilder/internal/imageload"
	"github.com/imagegate/gatebuilder/internal/keys"
	gblog "github.com/imagegate/gatebuilder/internal/log"
	"github.com/imagegate/gatebuilder/internal/preview"
	"github.com/imagegate/gatebuilder/internal/s3deploy"
	"github.com/imagegate/gatebuilder/internal/uicolor"
)

// currentVersion is bumped on every release; --version prints it via
// blang/semver so it is validated as a real semantic version when the
// program starts, not just an arbitrary string.
var currentVersion = semver.MustParse("1.0.0")

func main() {
	log := gblog.Setup("gatebuilder", logging.INFO)

	app := cli.NewApp()
	app.Name = "gatebuilder"
	app.Usage = "build the encrypted level bundle for an image-gated puzzle game"
	app.Version = currentVersion.String()
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "root",
			Value: ".",
			Usage: "build input root (expects data/ and base-html/ beneath it)",
		},
		cli.StringFlag{
			Name:  "out",
			Value: "generated-html",
			Usage: "output directory for the generated bundle",
		},
		cli.BoolFlag{
			Name:  "generate-keys",
			Usage: "emit fresh ECDSA P-256 key pairs as JSON on stdout and exit; pass a count as the first argument (default 30)",
		},
		cli.BoolFlag{
			Name:  "open",
			Usage: "open the first generated language bundle in the default browser",
		},
		cli.StringFlag{
			Name:  "upload-s3",
			Usage: "upload the generated output directory to this S3 bucket",
		},
		cli.StringFlag{
			Name:  "hint-sheet-url",
			Usage: `required; hint CSV URL template, "{lang}" replaced with the language code`,
		},
	}
	app.Action = func(c *cli.Context) error {
		return run(c, log)
	}

	if err := app.Run(os.Args); err != nil {
		log.Errorf("%s", uicolor.Failure(err.Error()))
		os.Exit(1)
	}
}

func run(c *cli.Context, log *logging.Logger) error {
	if c.Bool("generate-keys") {
		return runGenerateKeys(c)
	}

	buildID := uuid.Must(uuid.NewV4()).String()
	log.Infof("starting build %s", buildID)

	root := c.String("root")
	outDir := c.String("out")

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	keyRecords, err := loadKeyRecords(root)
	if err != nil {
		return err
	}
	templates, err := loadTemplates(root, cfg.Languages)
	if err != nil {
		return err
	}

	url := c.String("hint-sheet-url")
	if url == "" {
		return fmt.Errorf("--hint-sheet-url is required: hint text is fetched from it for every level")
	}
	fetcher := hintcrypto.NewHTTPCSVFetcher(url)

	in := build.Inputs{
		Config:      cfg,
		KeyRecords:  keyRecords,
		Images:      imageload.FileLoader{Root: root},
		CSVFetcher:  fetcher,
		Templates:   templates,
		OutDir:      outDir,
		BuildID:     buildID,
		GeneratedAt: buildTimestamp(),
		Log:         buildLoggerAdapter{log},
	}

	out, err := build.Run(context.Background(), in)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	var firstHTMLPath string
	for _, lang := range cfg.Languages {
		if err := bundle.WriteLanguageBundle(outDir, lang, out.Languages[lang]); err != nil {
			return err
		}
		if firstHTMLPath == "" {
			firstHTMLPath = filepath.Join(outDir, fmt.Sprintf("index-%s.html", lang))
		}
		log.Infof("%s", uicolor.Success(fmt.Sprintf("wrote %s", filepath.Join(outDir, fmt.Sprintf("index-%s.html", lang)))))
	}
	if err := bundle.WriteManifest(outDir, out.Manifest); err != nil {
		return err
	}

	if bucket := c.String("upload-s3"); bucket != "" {
		log.Infof("%s", uicolor.Progress(fmt.Sprintf("uploading %s to s3://%s", outDir, bucket)))
		if err := s3deploy.UploadDir(context.Background(), bucket, outDir); err != nil {
			return err
		}
	}
	if c.Bool("open") && firstHTMLPath != "" {
		if err := preview.Open(firstHTMLPath); err != nil {
			log.Warningf("%s", uicolor.Warning(fmt.Sprintf("could not open browser preview: %s", err)))
		}
	}

	log.Infof("%s", uicolor.Success(fmt.Sprintf("build %s complete: %d language(s)", buildID, len(cfg.Languages))))
	return nil
}

func runGenerateKeys(c *cli.Context) error {
	count := genkeys.DefaultCount
	if c.NArg() > 0 {
		n, err := strconv.Atoi(c.Args().First())
		if err != nil {
			return fmt.Errorf("invalid key count %q: %w", c.Args().First(), err)
		}
		count = n
	}
	records, err := genkeys.Generate(count)
	if err != nil {
		return err
	}
	out, err := genkeys.MarshalJSON(records)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func buildTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func loadConfig(root string) (config.GlobalConfig, error) {
	raw, err := os.ReadFile(filepath.Join(root, "data", "data-global.json"))
	if err != nil {
		return config.GlobalConfig{}, fmt.Errorf("reading data-global.json: %w", err)
	}
	return config.Parse(raw)
}

func loadKeyRecords(root string) ([]keys.Record, error) {
	raw, err := os.ReadFile(filepath.Join(root, "data", "data-keys.json"))
	if err != nil {
		return nil, fmt.Errorf("reading data-keys.json: %w", err)
	}
	var records []keys.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parsing data-keys.json: %w", err)
	}
	return records, nil
}

func loadTemplates(root string, languages []string) (map[string][]byte, error) {
	templates := make(map[string][]byte, len(languages))
	for _, lang := range languages {
		path, err := bundle.TemplatePath(root, lang)
		if err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading template for %q: %w", lang, err)
		}
		templates[lang] = raw
	}
	return templates, nil
}

type buildLoggerAdapter struct {
	log *logging.Logger
}

func (a buildLoggerAdapter) Infof(format string, args ...interface{})    { a.log.Infof(format, args...) }
func (a buildLoggerAdapter) Warningf(format string, args ...interface{}) { a.log.Warningf(format, args...) }
