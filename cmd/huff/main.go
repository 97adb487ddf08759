package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"

	"github.com/icza/huff/internal/config"
)

var log = logging.MustGetLogger("huff")

const progName = "huff"
const usageMessageRaw = `
Usage: huff [OPTIONS] COMMAND INPUT [OUTPUT]

Options:
  --config FILE, -c FILE
	Load settings from the YAML file FILE.
  --debug, -d
	Log tree statistics and other details to standard error.

Commands:
  compress INPUT [OUTPUT]
	Compress INPUT into OUTPUT.  OUTPUT defaults to INPUT with
	the compress extension ($cext).
  decompress INPUT [OUTPUT]
	Decompress INPUT into OUTPUT.  OUTPUT defaults to INPUT with
	the decompress extension ($dext).  OUTPUT is deleted if
	INPUT is not a valid compressed file.
  verify INPUT
	Compress and decompress INPUT in memory, and check that
	the result matches the original.
`

var ourFlags *flag.FlagSet

func usageMessage(cfg *config.Config) string {
	template := strings.TrimLeft(usageMessageRaw, "\n")
	replacements := []string{
		"$cext", cfg.CompressConfig.Extension,
		"$dext", cfg.DecompressConfig.Extension,
	}
	return strings.NewReplacer(replacements...).Replace(template)
}

func usageErrorf(detailFmt string, detailArgs ...interface{}) {
	detail := fmt.Sprintf(detailFmt, detailArgs...)
	cfg := config.Default()
	fmt.Fprintf(os.Stderr, "%s: %s\n%s", progName, detail, usageMessage(&cfg))
	os.Exit(64)
}

func exitError(err error) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", progName, err.Error())
	os.Exit(1)
}

type nullWriter struct{}

func (n *nullWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

var leveledLogBackend logging.LeveledBackend

func startLogging() {
	backend := logging.NewLogBackend(os.Stderr, progName+": ", 0)
	formatSpec := "%{color:bold}%{level:-7s}%{color:reset} %{module:-14s} | %{message}"
	formatter := logging.MustStringFormatter(formatSpec)
	formatted := logging.NewBackendFormatter(backend, formatter)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.INFO, "")
	logging.SetBackend(leveled)
	leveledLogBackend = leveled
}

func main() {
	startLogging()

	ourFlags = flag.NewFlagSet(progName, flag.ContinueOnError)
	ourFlags.Usage = func() {}
	ourFlags.SetOutput(&nullWriter{})

	var configPath string
	var debugLogging bool
	ourFlags.StringVar(&configPath, "config", "", "")
	ourFlags.StringVar(&configPath, "c", "", "")
	ourFlags.BoolVar(&debugLogging, "debug", false, "")
	ourFlags.BoolVar(&debugLogging, "d", false, "")

	argErr := ourFlags.Parse(os.Args[1:])
	if argErr == flag.ErrHelp {
		cfg := config.Default()
		io.WriteString(os.Stdout, usageMessage(&cfg))
		os.Exit(0)
	} else if argErr != nil {
		usageErrorf("%s", argErr.Error())
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		exitError(err)
	}
	leveledLogBackend.SetLevel(cfg.LogLevel(), "")
	if debugLogging {
		leveledLogBackend.SetLevel(logging.DEBUG, "")
	}

	args := ourFlags.Args()
	if len(args) < 2 {
		usageErrorf("not enough arguments; expected COMMAND and INPUT")
	}
	command, input := args[0], args[1]

	output := ""
	switch {
	case len(args) == 3 && command != "verify":
		output = args[2]
	case len(args) > 3, len(args) == 3 && command == "verify":
		usageErrorf("too many arguments at %d (\"%s\")", len(args)-1, args[len(args)-1])
	}

	switch command {
	case "compress":
		if output == "" {
			output = cfg.CompressedName(input)
		}
		err = runCompress(os.Stdout, input, output)
	case "decompress":
		if output == "" {
			output = cfg.DecompressedName(input)
		}
		err = runDecompress(os.Stdout, input, output)
	case "verify":
		err = runVerify(os.Stdout, input)
	default:
		usageErrorf("unknown command \"%s\"", command)
	}

	if err != nil {
		exitError(err)
	}
}
