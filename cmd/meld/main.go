package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/23skdu/meld/internal/app"
	"github.com/23skdu/meld/internal/client"
	"github.com/23skdu/meld/internal/text"
	"github.com/23skdu/meld/internal/translate"
)

// listFlag collects comma separated values across repeated uses of a flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			*l = append(*l, p)
		}
	}
	return nil
}

var (
	hypPaths listFlag

	srcPath          = flag.String("src", "", "Source text file")
	refPath          = flag.String("ref", "", "Reference text file")
	delBPE           = flag.Bool("del-bpe", false, "Delete BPE symbols (\"@@ \")")
	lowercase        = flag.Bool("lc", false, "Lowercase all input")
	truecaseModel    = flag.String("truecase", "", "Truecase input using this Moses truecaser model file")
	detokLang        = flag.String("detok", "", "Detokenize Moses-tokenized input; argument is the language code")
	unescape         = flag.Bool("unescape", true, "Undo Moses entity escapes such as &apos;")
	nfc              = flag.Bool("nfc", false, "Unicode NFC-normalise every line before comparing")
	head             = flag.Int("head", 0, "Only show the first n sentences (0 shows all)")
	translateTo      = flag.String("translate", "", "Also translate the source with Google Translate; argument is the target language code")
	translateURL     = flag.String("translate-url", client.DefaultTranslateURL, "Translation service endpoint")
	translateTimeout = flag.Duration("translate-timeout", 30*time.Second, "Timeout of a single translation call")
	summary          = flag.Bool("summary", false, "Print exact-match counts per hypothesis after the listing")
	format           = flag.String("format", app.FormatText, "Output format: text or arrow (Arrow IPC stream)")
	serverAddr       = flag.String("server", "", "Flight server to upload melded sentences to (e.g. localhost:3000)")
	datasetName      = flag.String("dataset", "meld", "Target dataset name on the Flight server")
	listenAddr       = flag.String("listen", "", "Serve /meld over HTTP on this address instead of a one-shot run (e.g. :8080)")
	maxConcurrent    = flag.Int("max-concurrent", 100000, "Maximum number of sentences melded concurrently in server mode")
	enableOTel       = flag.Bool("otel", false, "Enable OpenTelemetry tracing (written to stderr)")
	cpuProfile       = flag.String("cpuprofile", "", "Write cpu profile to file")
	logLevel         = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
)

func main() {
	flag.Var(&hypPaths, "hyps", "Hypothesis text file(s), comma separated; positional arguments are added too")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s -src FILE -ref FILE -hyps FILE[,FILE...] [options] [HYP...]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Melds the source, reference and hypotheses of MT outputs into one listing.")
		flag.PrintDefaults()
	}
	flag.Parse()
	hypPaths = append(hypPaths, flag.Args()...)

	os.Exit(run())
}

func run() int {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Error().Err(err).Str("log-level", *logLevel).Msg("Invalid log level")
		return 2
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *enableOTel {
		shutdown, err := initTracer()
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize tracer")
			return 1
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create CPU profile file")
			return 1
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Error().Err(err).Msg("Could not start CPU profile")
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	textCfg := text.Config{
		Lowercase:  *lowercase,
		StripBPE:   *delBPE,
		Truecase:   *truecaseModel,
		Detokenize: *detokLang,
		Unescape:   *unescape,
		Normalize:  *nfc,
	}
	translator := translate.NewGuarded(
		client.NewTranslateClient(client.TranslateOptions{BaseURL: *translateURL, Timeout: *translateTimeout}),
		translate.GuardOptions{Timeout: *translateTimeout},
	)

	if *listenAddr != "" {
		if err := startServer(ctx, *listenAddr, textCfg, translator, *maxConcurrent); err != nil {
			log.Error().Err(err).Msg("Server failed")
			return 1
		}
		return 0
	}

	deps := app.Deps{Translator: translator}
	if *serverAddr != "" {
		fc, err := client.NewFlightClient(*serverAddr)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create flight client")
			return 1
		}
		defer func() {
			if err := fc.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close flight client")
			}
		}()
		log.Info().Str("addr", *serverAddr).Msg("Connected to Flight Server")
		deps.Sink = fc
	}

	opts := app.Options{
		Source:        *srcPath,
		Reference:     *refPath,
		Hypotheses:    hypPaths,
		Text:          textCfg,
		TranslateLang: *translateTo,
		Head:          *head,
		Summary:       *summary,
		Format:        *format,
		Dataset:       *datasetName,
	}
	if err := app.Run(ctx, opts, deps, os.Stdout); err != nil {
		log.Error().Err(err).Msg("meld failed")
		if errors.Is(err, text.ErrInvalidOption) {
			flag.Usage()
			return 2
		}
		return 1
	}
	return 0
}

func initTracer() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("meld"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}
