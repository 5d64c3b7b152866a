package cli

import "flag"

const versionString = "1.0.0"
const defaultConfigPath = "./cxxbind.toml"

type cliOptions struct {
	configPath  string
	catalogue   string
	envFile     string
	once        bool
	ui          bool
	check       bool
	history     int
	metricsAddr string
	verbose     bool
	version     bool
	args        []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("cxxbind", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.StringVar(&opts.catalogue, "catalogue", "", "Override the catalogue path from the config")
	fs.StringVar(&opts.envFile, "env-file", ".env", "Load CXXBIND_* overrides from this dotenv file when present")
	fs.BoolVar(&opts.once, "once", false, "Run the pipeline once and exit")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode")
	fs.BoolVar(&opts.check, "check", false, "Validate the config and catalogue paths, then exit")
	fs.IntVar(&opts.history, "history", 0, "Print the N most recent recorded runs and exit (requires db.enabled)")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address in watch mode")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
