package hardware

import (
	"fmt"
	"os/exec"
	"sync"

	customlog "github.com/open-teleop/rover/pkg/log"
)

// CommandRunner runs an external program to completion.
type CommandRunner func(name string, args ...string) error

func runCommand(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", name, err, out)
	}
	return nil
}

// ExecAudio speaks through a TTS program and plays the horn through an
// audio player. Each request runs in its own goroutine.
type ExecAudio struct {
	ttsCommand  []string
	hornCommand []string
	run         CommandRunner
	logger      customlog.Logger
	wg          sync.WaitGroup
}

var _ Audio = (*ExecAudio)(nil)

// NewExecAudio creates an ExecAudio. The spoken text is appended to ttsCommand.
func NewExecAudio(ttsCommand, hornCommand []string, logger customlog.Logger) *ExecAudio {
	return &ExecAudio{
		ttsCommand:  ttsCommand,
		hornCommand: hornCommand,
		run:         runCommand,
		logger:      logger.WithField("driver", "exec-audio"),
	}
}

// SetRunner replaces the command runner. Used by tests.
func (a *ExecAudio) SetRunner(run CommandRunner) {
	a.run = run
}

func (a *ExecAudio) start(what string, argv []string) {
	if len(argv) == 0 {
		a.logger.Warnf("No command configured for %s", what)
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.run(argv[0], argv[1:]...); err != nil {
			a.logger.Errorf("%s failed: %v", what, err)
		}
	}()
}

func (a *ExecAudio) Speak(text string) {
	a.logger.Infof("TTS: %s", text)
	if len(a.ttsCommand) == 0 {
		a.start("tts", nil)
		return
	}
	argv := append(append([]string{}, a.ttsCommand...), text)
	a.start("tts", argv)
}

func (a *ExecAudio) PlayHorn() {
	a.logger.Infof("Honking")
	a.start("horn", a.hornCommand)
}

// Wait blocks until every started command has finished.
func (a *ExecAudio) Wait() {
	a.wg.Wait()
}
