package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
)

// WrapProcess runs executable as a child process, forwards its JSON log lines
// to stdout and turns a raw panic dump on its stderr into a single fatal log
// record. Interrupt and SIGTERM are relayed to the child.
func WrapProcess(executable string, arg ...string) {
	supervisorLogger := NewLogger("Supervisor")
	defer handlePanic(supervisorLogger)

	r, w, err := os.Pipe()
	if err != nil {
		supervisorLogger.Fatal().Err(err).Msg("Could not create pipe for logs")
		os.Exit(1)
	}

	cmd := exec.Command(executable, arg...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = w

	if err = cmd.Start(); err != nil {
		supervisorLogger.Fatal().Err(err).Msg("Could not launch child process")
		os.Exit(1)
	}
	go relaySignals(cmd.Process, supervisorLogger)

	exitCodeCh := make(chan int)
	logsCh := make(chan []byte)
	go waitForCommandToExit(cmd, supervisorLogger, exitCodeCh)
	go collectLogs(r, supervisorLogger, logsCh)

	panicLogs := strings.Builder{}
	foundPanic := false
	for {
		select {
		case exitCode := <-exitCodeCh:
			handleExit(exitCode, panicLogs.String(), supervisorLogger)
		case line := <-logsCh:
			foundPanic = handleLogLine(os.Stdout, line, foundPanic, &panicLogs, supervisorLogger)
		}
	}
}

func relaySignals(process *os.Process, supervisorLogger zerolog.Logger) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	for sig := range signals {
		supervisorLogger.Info().Str("signal", sig.String()).Msg("Relaying signal to child process")
		if err := process.Signal(sig); err != nil {
			supervisorLogger.Err(err).Msg("Could not relay signal")
		}
	}
}

func waitForCommandToExit(cmd *exec.Cmd, supervisorLogger zerolog.Logger, exitCodeCh chan<- int) {
	defer handlePanic(supervisorLogger)
	err := cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		exitCodeCh <- 0
	case errors.As(err, &exitErr):
		exitCodeCh <- exitErr.ExitCode()
	default:
		exitCodeCh <- 1
	}
}

func collectLogs(r io.Reader, supervisorLogger zerolog.Logger, logsCh chan<- []byte) {
	defer handlePanic(supervisorLogger)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		logsCh <- line
	}
	if err := scanner.Err(); err != nil {
		supervisorLogger.Fatal().Err(err).Msg("Error scanning child process stderr")
		os.Exit(1)
	}
}

func handleExit(exitCode int, panicLogs string, supervisorLogger zerolog.Logger) {
	if exitCode != 0 {
		event := supervisorLogger.Fatal()
		if panicLogs != "" {
			event = event.Err(errors.New(panicLogs))
		}
		event.Msgf("Child process exited with code: %d", exitCode)
	} else {
		supervisorLogger.Info().Msg("Exited with code 0")
	}
	os.Exit(exitCode)
}

// handleLogLine copies JSON records to out and accumulates everything after
// the first "panic" line. It reports whether a panic dump has started.
func handleLogLine(out io.Writer, line []byte, foundPanic bool, panicLogs *strings.Builder, supervisorLogger zerolog.Logger) bool {
	text := string(line)
	if !foundPanic && strings.HasPrefix(text, "panic") {
		foundPanic = true
	}
	switch {
	case len(line) == 0:
	case foundPanic:
		panicLogs.WriteString(text)
		panicLogs.WriteByte('\n')
	case json.Valid(line):
		fmt.Fprintln(out, text)
	default:
		supervisorLogger.Error().Msgf("Got log line that is not JSON formatted: '%s'", text)
	}
	return foundPanic
}

func handlePanic(supervisorLogger zerolog.Logger) {
	r := recover()
	if r == nil {
		return
	}
	supervisorLogger.Fatal().
		Caller().
		Str("error", fmt.Sprint(r)).
		Str("stack_trace", string(debug.Stack())).
		Msg("Supervisor panicked")
}
