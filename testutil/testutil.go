// Copyright 2020 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

/*
Package testutil contains helpers for running tests against a TPM
simulator or a real TPM device.
*/
package testutil

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/snapcore/snapd/osutil"
	"github.com/snapcore/snapd/osutil/sys"
	"github.com/snapcore/snapd/snap"

	esys "github.com/canonical/go-tpm2-esys"
	"github.com/canonical/go-tpm2-esys/mssim"
)

// TPMBackendType indicates the type of TPM connection that should be
// used for tests.
type TPMBackendType int

const (
	TPMBackendNone TPMBackendType = iota
	TPMBackendDevice
	TPMBackendMssim
)

var (
	// TPMBackend defines the type of TPM connection that should be used for tests.
	TPMBackend TPMBackendType = TPMBackendNone

	// TPMDevicePath defines the path of the TPM character device where TPMBackend
	// is TPMBackendDevice.
	TPMDevicePath string = "/dev/tpm0"

	// MssimPort defines the port number of the TPM simulator command port where
	// TPMBackend is TPMBackendMssim.
	MssimPort uint = 2321

	// ErrSkipNoTPM is returned from the Open method of devices returned by
	// NewTPMDevice and NewSimulatorDevice when no TPM is configured for the
	// current test environment.
	ErrSkipNoTPM = errors.New("no TPM configured for the test")
)

type tpmBackendFlag TPMBackendType

func (v tpmBackendFlag) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if b {
		TPMBackend = TPMBackendType(v)
	} else if TPMBackend == TPMBackendType(v) {
		TPMBackend = TPMBackendNone
	}
	return nil
}

func (v tpmBackendFlag) String() string {
	return strconv.FormatBool(TPMBackend == TPMBackendType(v))
}

func (v tpmBackendFlag) IsBoolFlag() bool { return true }

// AddCommandLineFlags adds various command line flags to the current executable,
// which can be used for setting test parameters. This should be called from inside
// of the init function for a package.
func AddCommandLineFlags() {
	flag.Var(tpmBackendFlag(TPMBackendDevice), "use-tpm", "Whether to use a TPM character device for testing (eg, /dev/tpm0)")
	flag.Var(tpmBackendFlag(TPMBackendMssim), "use-mssim", "Whether to use the TPM simulator for testing")

	flag.StringVar(&TPMDevicePath, "tpm-path", "/dev/tpm0", "The path of the TPM character device to use for testing (default: /dev/tpm0)")
	flag.UintVar(&MssimPort, "mssim-port", 2321, "The port number of the TPM simulator command channel (default: 2321)")
}

type tpmSimulatorLaunchContext struct {
	port               uint
	persistentSavePath string
	workDir            string
	keepWorkDir        bool

	cmd *exec.Cmd

	errs []error
}

func (c *tpmSimulatorLaunchContext) captureErr(task string, fn func() error) {
	if err := fn(); err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s failed: %w", task, err))
	}
}

func (c *tpmSimulatorLaunchContext) stopAndTerminate() (err error) {
	if c.cmd == nil || c.cmd.Process == nil {
		return nil
	}

	defer func() {
		if err != nil {
			c.captureErr("kill", func() error { return c.cmd.Process.Kill() })
		}
		c.captureErr("wait", func() error { return c.cmd.Wait() })
	}()

	transport, err := mssim.NewLocalDevice(c.port).Open()
	if err != nil {
		return fmt.Errorf("cannot open simulator connection for stop: %w", err)
	}

	tpm, err := esys.NewTPMContext(transport)
	if err != nil {
		return fmt.Errorf("cannot create context for stop: %w", err)
	}

	c.captureErr("shutdown", func() error {
		return tpm.Shutdown(esys.StartupClear)
	})
	if err := transport.(*mssim.Transport).Stop(); err != nil {
		return fmt.Errorf("cannot stop simulator: %w", err)
	}
	if err := tpm.Close(); err != nil {
		return fmt.Errorf("cannot close simulator: %w", err)
	}

	return nil
}

func (c *tpmSimulatorLaunchContext) savePersistent() error {
	if c.workDir == "" || c.persistentSavePath == "" {
		return nil
	}

	// Open the updated persistent storage
	src, err := os.Open(filepath.Join(c.workDir, "NVChip"))
	switch {
	case os.IsNotExist(err):
		// No storage - this means we failed before the simulator started
		return nil
	case err != nil:
		return fmt.Errorf("cannot open simulator's persistent data: %w", err)
	}
	defer src.Close()

	// Atomically write to the source directory
	dest, err := osutil.NewAtomicFile(c.persistentSavePath, 0644, 0, sys.UserID(osutil.NoChown), sys.GroupID(osutil.NoChown))
	if err != nil {
		return fmt.Errorf("cannot create atomic file: %w", err)
	}
	defer dest.Cancel()

	if _, err := io.Copy(dest, src); err != nil {
		return fmt.Errorf("cannot copy simulator's persistent data to destination: %w", err)
	}
	if err := dest.Commit(); err != nil {
		return fmt.Errorf("cannot commit saved persistent data: %w", err)
	}

	return nil
}

func (c *tpmSimulatorLaunchContext) cleanWorkDir() error {
	if c.workDir == "" {
		return nil
	}
	if c.keepWorkDir {
		fmt.Printf("\n*** Saved working directory: %s ***\n\n", c.workDir)
		return nil
	}
	return os.RemoveAll(c.workDir)
}

func (c *tpmSimulatorLaunchContext) shutdown() error {
	c.captureErr("stop and terminate", c.stopAndTerminate)
	c.captureErr("save persistent", c.savePersistent)
	c.captureErr("cleanup workdir", c.cleanWorkDir)

	if len(c.errs) == 0 {
		return nil
	}

	msg := "cannot properly shut down the simulator because of the following errors:\n"
	for _, err := range c.errs {
		msg += "* " + err.Error() + "\n"
	}
	return errors.New(msg)
}

func (c *tpmSimulatorLaunchContext) launch(opts *TPMSimulatorOptions) error {
	if opts.SourcePath == "" && opts.SavePersistent {
		return errors.New("SavePersistent requires SourcePath")
	}
	if opts.WorkDir == "" && opts.KeepWorkDir {
		return errors.New("KeepWorkDir requires WorkDir")
	}

	c.port = opts.Port
	if c.port == 0 {
		c.port = MssimPort
	}
	c.keepWorkDir = opts.KeepWorkDir
	if opts.SavePersistent {
		c.persistentSavePath = opts.SourcePath
	}

	// Search for a TPM simulator binary
	mssimPath := ""
	for _, p := range []string{"tpm2-simulator", "tpm2-simulator-chrisccoulson.tpm2-simulator"} {
		var err error
		mssimPath, err = exec.LookPath(p)
		if err == nil {
			break
		}
	}
	if mssimPath == "" {
		return errors.New("cannot find a simulator binary")
	}

	// The TPM simulator creates its persistent storage in its current
	// directory. We create a directory in XDG_RUNTIME_DIR because snaps
	// have their own private tpmdir. For this, we need to know the name
	// of the snap if the simulator belongs to one.
	mssimSnapName := ""
	for currentPath, lastPath := mssimPath, ""; currentPath != ""; {
		dest, err := os.Readlink(currentPath)
		switch {
		case err != nil:
			if filepath.Base(currentPath) == "snap" {
				mssimSnapName, _ = snap.SplitSnapApp(filepath.Base(lastPath))
			}
			currentPath = ""
		default:
			if !filepath.IsAbs(dest) {
				dest = filepath.Join(filepath.Dir(currentPath), dest)
			}
			lastPath = currentPath
			currentPath = dest
		}
	}

	runDir := os.Getenv("XDG_RUNTIME_DIR")
	if runDir == "" {
		return errors.New("cannot determine XDG_RUNTIME_DIR")
	}

	// Determine working directory location
	var workDirRoot string
	var workDirPrefix string
	switch {
	case opts.WorkDir != "":
		workDirRoot = opts.WorkDir
		workDirPrefix = "tpm2test.mssim"
	case mssimSnapName != "":
		// The simulator is a snap. Use the snap-specific rundir.
		workDirRoot = filepath.Join(runDir, "snap."+mssimSnapName)
		workDirPrefix = ""
	default:
		workDirRoot = runDir
		workDirPrefix = "tpm2test.mssim"
	}

	if err := os.MkdirAll(workDirRoot, 0755); err != nil {
		return fmt.Errorf("cannot create workdir root: %w", err)
	}
	workDir, err := os.MkdirTemp(workDirRoot, workDirPrefix)
	if err != nil {
		return fmt.Errorf("cannot create workdir for simulator: %w", err)
	}
	c.workDir = workDir

	// Copy any pre-existing persistent data in to the working directory
	if opts.SourcePath != "" {
		source, err := os.Open(opts.SourcePath)
		switch {
		case err != nil && opts.SavePersistent && os.IsNotExist(err):
			// The source file doesn't exist and SavePersistent is set.
			// Permit this so that it can be used to create a new file.
		case err != nil:
			return fmt.Errorf("cannot open source persistent storage: %w", err)
		default:
			defer source.Close()
			dest, err := os.Create(filepath.Join(c.workDir, "NVChip"))
			if err != nil {
				return fmt.Errorf("cannot create working copy of persistent storage for simulator: %w", err)
			}
			defer dest.Close()
			if _, err := io.Copy(dest, source); err != nil {
				return fmt.Errorf("cannot copy persistent storage for simulator to working directory: %w", err)
			}
		}
	}

	var args []string
	if opts.Manufacture {
		args = append(args, "-m")
	}
	args = append(args, strconv.FormatUint(uint64(c.port), 10))

	cmd := exec.Command(mssimPath, args...)
	cmd.Dir = c.workDir // Run from the working directory
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	c.cmd = cmd

	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("cannot start simulator: %w", err)
	}

	device := mssim.NewLocalDevice(c.port)
	var transport esys.Transport

	// Give the simulator 5 seconds to start up
Loop:
	for i := 0; ; i++ {
		var err error
		transport, err = device.Open()
		switch {
		case err != nil && i == 4:
			return fmt.Errorf("cannot open simulator connection: %w", err)
		case err != nil:
			time.Sleep(time.Second)
		default:
			break Loop
		}
	}

	tpm, err := esys.NewTPMContext(transport)
	if err != nil {
		return fmt.Errorf("cannot create context for simulator: %w", err)
	}
	defer tpm.Close()

	if err := tpm.Startup(esys.StartupClear); err != nil {
		return fmt.Errorf("simulator startup failed: %w", err)
	}

	return nil
}

// TPMSimulatorOptions provide the options to LaunchTPMSimulator
type TPMSimulatorOptions struct {
	// Port is the TCP port to use for the command channel. This port + 1
	// will also be used for the platform channel. If this is zero, then
	// the value of [MssimPort] will be used.
	Port uint

	SourcePath     string    // Path for the source persistent data file
	Manufacture    bool      // Indicates that the simulator should be executed in re-manufacture mode
	SavePersistent bool      // Saves the persistent data file back to SourcePath on exit
	Stdout         io.Writer // Specify stdout for simulator
	Stderr         io.Writer // Specify stderr for simulator
	WorkDir        string    // Specify a temporary working directory for the simulator. One will be created if not specified
	KeepWorkDir    bool      // Keep the working directory on exit. Requires WorkDir.
}

// LaunchTPMSimulator launches a TPM simulator with the TCP command channel
// listening on opts.Port. The platform channel will listen on opts.Port + 1.
// If opts.Port is zero, then the value of [MssimPort] is used.
//
// A temporary working directory for the simulator's persistent storage is
// created in XDG_RUNTIME_DIR. The location of the working directory can be
// overridden with opts.WorkDir.
//
// If opts.SourcePath is not empty, the file at the specified path will be
// copied to the working directory and used as the persistent NV storage. If
// opts.SavePersistent is also true, the updated persistent storage will be
// copied back to opts.SourcePath on exit. This is useful for generating test
// data that needs to be checked into a repository. If opts.SavePersistent is
// true then the file at opts.SourcePath doesn't need to exist.
//
// The temporary working directory is cleaned up on exit, unless
// opts.KeepWorkDir is set.
//
// On success, it returns a function that can be used to stop the simulator
// and clean up its temporary directory.
func LaunchTPMSimulator(opts *TPMSimulatorOptions) (stop func(), err error) {
	// Pick sensible defaults
	if opts == nil {
		opts = &TPMSimulatorOptions{Port: MssimPort, Manufacture: true}
	}

	ctx := new(tpmSimulatorLaunchContext)

	// Defer cleanup on failure
	defer func() {
		if err != nil {
			ctx.shutdown()
		}
	}()

	if err := ctx.launch(opts); err != nil {
		return nil, err
	}

	return func() {
		ctx.shutdown()
	}, nil
}
