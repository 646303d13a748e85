// Package config provides the configuration management for the fibcalc application.
// It defines the data structure for the configuration, handles the parsing of
// command-line arguments, and performs validation on the configuration values.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agbru/fibcalc/internal/bigfft"
	apperrors "github.com/agbru/fibcalc/internal/errors"
	"github.com/agbru/fibcalc/internal/fibonacci"
)

const (
	// EnvPrefix is the prefix for all environment variables used by fibcalc.
	// Environment variables provide an alternative to CLI flags for configuration,
	// following the 12-Factor App methodology.
	EnvPrefix = "FIBCALC_"
)

// Default configuration values.
// These can be overridden via command-line flags or environment variables.
const (
	// DefaultN is the default Fibonacci index to calculate.
	DefaultN uint64 = 250_000_000
	// DefaultTimeout is the default calculation timeout.
	DefaultTimeout = 5 * time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
	// DefaultAlgo is the default algorithm selection.
	DefaultAlgo = "all"
	// DefaultThreshold is the default parallelism threshold in bits.
	DefaultThreshold = 4096
	// DefaultFFTThreshold is the default FFT multiplication threshold in bits.
	DefaultFFTThreshold = 500_000
	// DefaultStrassenThreshold is the default Strassen algorithm threshold in bits.
	DefaultStrassenThreshold = 3072
)

// AppConfig aggregates the application's configuration parameters, parsed from
// command-line flags. It encapsulates all settings that control the execution,
// from the Fibonacci index to calculate, to performance-tuning parameters.
type AppConfig struct {
	// N is the index of the Fibonacci number to be calculated.
	N uint64
	// Verbose, if true, instructs the application to display the full calculated number.
	Verbose bool
	// Details, if true, provides a detailed report including performance metrics.
	Details bool
	// Timeout sets the maximum duration for the calculation.
	Timeout time.Duration
	// Algo specifies the algorithm to use ("all", "fast", "matrix", etc.).
	Algo string
	// Threshold determines the bit size at which multiplications are parallelized.
	Threshold int
	// FFTThreshold is the bit size threshold for using FFT-based multiplication.
	FFTThreshold int
	// StrassenThreshold controls when matrix multiplication switches to Strassen.
	StrassenThreshold int
	// Calibrate, if true, runs the application in calibration mode to find the
	// optimal parallelism threshold.
	Calibrate bool
	// AutoCalibrate, if true, runs a short automatic calibration at startup to
	// refine Threshold and FFTThreshold for the current machine.
	AutoCalibrate bool
	// CalibrationProfile is the path to a calibration profile file.
	// If set, the application will load/save calibration results from/to this file.
	// If empty, uses the default path (~/.fibcalc_calibration.json).
	CalibrationProfile string
	// JSONOutput, if true, outputs the result in JSON format.
	JSONOutput bool
	// ServerMode, if true, starts the application as an HTTP server.
	ServerMode bool
	// Port specifies the port to listen on in server mode.
	Port string
	// NoColor, if true, disables all color output in the CLI.
	// Also respects the NO_COLOR environment variable.
	NoColor bool

	// OutputFile, if specified, saves the result to this file path.
	OutputFile string
	// Quiet mode - minimal output for scripting purposes.
	// Suppresses progress bars, banners, and informational messages.
	Quiet bool
	// HexOutput, if true, displays the result in hexadecimal format.
	HexOutput bool
	// Interactive, if true, starts the application in REPL mode.
	Interactive bool
	// Completion, if set, generates shell completion script for the specified shell.
	// Valid values are: "bash", "zsh", "fish", "powershell".
	Completion string
	// Concise, if false (default), suppresses the display of the calculated value section.
	// Set to true with -c/--calculate to display the calculated value.
	Concise bool
	// LastDigits, if positive, requests modular mode: only the last LastDigits
	// decimal digits of F(n) are computed and displayed.
	LastDigits int
	// MemoryLimit is a byte count in the "<digits>[B|K|M|G]" grammar (e.g.
	// "512M"); empty means no limit. It is validated and copied into
	// fibonacci.Options, where no component reads it.
	MemoryLimit string
	// ExpectedValue, if non-empty, is a decimal string the computed result is
	// checked against once all calculators finish; a mismatch is reported the
	// same way as a cross-algorithm disagreement (exit code 3).
	ExpectedValue string
}

// ToCalculationOptions converts the application configuration into
// fibonacci.Options for use by the calculators.
func (c AppConfig) ToCalculationOptions() fibonacci.Options {
	memLimit, _ := fibonacci.ParseMemoryLimit(c.MemoryLimit)
	return fibonacci.Options{
		ParallelThreshold: c.Threshold,
		FFTThreshold:      c.FFTThreshold,
		StrassenThreshold: c.StrassenThreshold,
		LastDigits:        c.LastDigits,
		MemoryLimit:       memLimit,
		Verbose:           c.Verbose,
		Details:           c.Details,
	}
}

// Validate checks the semantic consistency of the configuration parameters.
// It ensures that numerical values are within valid ranges and that the chosen
// algorithm is supported.
//
// Parameters:
//   - availableAlgos: A slice of strings listing the valid algorithm names
//     (e.g., ["fast", "matrix"]).
//
// Returns:
//   - error: An error of type ConfigError if the configuration is invalid,
//     nil otherwise.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.Threshold < 0 {
		return apperrors.NewConfigError("parallelism threshold cannot be negative: %d", c.Threshold)
	}
	if c.FFTThreshold < 0 {
		return apperrors.NewConfigError("FFT threshold cannot be negative: %d", c.FFTThreshold)
	}
	if c.LastDigits < 0 {
		return apperrors.NewConfigError("last-digits cannot be negative: %d", c.LastDigits)
	}
	if _, err := fibonacci.ParseMemoryLimit(c.MemoryLimit); err != nil {
		return apperrors.NewConfigError("invalid memory-limit: %v", err)
	}
	if c.ExpectedValue != "" {
		if _, err := bigfft.FromDecimalString(c.ExpectedValue); err != nil {
			return apperrors.NewConfigError("invalid expect-value: %v", err)
		}
	}
	isAlgoAvailable := false
	for _, a := range availableAlgos {
		if a == c.Algo {
			isAlgoAvailable = true
			break
		}
	}
	if c.Algo != "all" && !isAlgoAvailable {
		return apperrors.NewConfigError("unrecognized algorithm: '%s'. Valid algorithms are: 'all' or [%s]", c.Algo, strings.Join(availableAlgos, ", "))
	}
	return nil
}

// ParseConfig parses the command-line arguments and populates an AppConfig
// struct. It defines all the command-line flags, sets their default values, and
// handles the parsing process. After parsing, it performs validation on the
// resulting configuration.
//
// The function is designed to be testable by allowing the input arguments and
// output writer to be specified.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: A slice of strings representing the command-line arguments
//     (typically os.Args[1:]).
//   - errorWriter: An io.Writer where parsing errors and usage information
//     will be printed.
//   - availableAlgos: A slice of valid algorithm names for validation.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: An error if flag parsing fails or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	algoHelp := fmt.Sprintf("Algorithm to use: 'all' (default) or one of [%s].", strings.Join(availableAlgos, ", "))

	config := AppConfig{}
	fs.Uint64Var(&config.N, "n", DefaultN, "Index n of the Fibonacci number to calculate.")
	fs.BoolVar(&config.Verbose, "v", false, "Display the full value of the result (can be very long).")
	fs.BoolVar(&config.Details, "d", false, "Display performance details and result metadata.")
	fs.BoolVar(&config.Details, "details", false, "Alias for -d.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for the calculation.")
	fs.StringVar(&config.Algo, "algo", DefaultAlgo, algoHelp)
	fs.IntVar(&config.Threshold, "threshold", DefaultThreshold, "Threshold (in bits) for activating parallelism in multiplications.")
	fs.IntVar(&config.FFTThreshold, "fft-threshold", DefaultFFTThreshold, "Threshold (in bits) to enable FFT multiplication (0 to disable).")
	fs.IntVar(&config.StrassenThreshold, "strassen-threshold", DefaultStrassenThreshold, "Threshold (in bits) to switch to Strassen's algorithm in matrix multiplication.")
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Runs calibration mode to determine the optimal parallelism threshold.")
	fs.BoolVar(&config.AutoCalibrate, "auto-calibrate", false, "Enables quick automatic calibration at startup (may increase loading time).")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Path to calibration profile file (default: ~/.fibcalc_calibration.json).")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")

	// New CLI enhancement flags
	fs.StringVar(&config.OutputFile, "output", "", "Output file path for the result.")
	fs.StringVar(&config.OutputFile, "o", "", "Output file path (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.HexOutput, "hex", false, "Display result in hexadecimal format.")
	fs.BoolVar(&config.Interactive, "interactive", false, "Start in interactive REPL mode.")
	fs.StringVar(&config.Completion, "completion", "", "Generate shell completion script (bash, zsh, fish, powershell).")
	fs.BoolVar(&config.Concise, "calculate", false, "Display the calculated value (disabled by default).")
	fs.BoolVar(&config.Concise, "c", false, "Display the calculated value (shorthand).")
	fs.IntVar(&config.LastDigits, "last-digits", 0, "If positive, compute only the last N decimal digits of F(n) (modular mode).")
	fs.StringVar(&config.MemoryLimit, "memory-limit", "", "Memory limit, e.g. '512M' (empty: no limit); validated but not enforced.")
	fs.StringVar(&config.ExpectedValue, "expect-value", "", "Decimal string to verify the computed result against (exit code 3 on mismatch).")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	// Apply environment variable overrides for flags not explicitly set
	applyEnvOverrides(&config, fs)

	config.Algo = strings.ToLower(config.Algo)
	if err := config.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.New("invalid configuration")
	}
	return config, nil
}
