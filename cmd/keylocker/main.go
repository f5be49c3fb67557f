package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/SurpriseDog/KeyLocker/cmd/internal"
	"github.com/SurpriseDog/KeyLocker/cmd/keylocker/internal/status"
	"github.com/SurpriseDog/KeyLocker/pkg/entropy"
	"github.com/SurpriseDog/KeyLocker/pkg/keylocker"
	"github.com/SurpriseDog/KeyLocker/pkg/region"
	"github.com/SurpriseDog/KeyLocker/pkg/secret"
)

// Exit codes, distinguishing the three public failure modes a script
// driving this tool needs to tell apart.
const (
	exitOK          = 0
	exitBadPassword = 1
	exitIoError     = 2
	exitUsageError  = 3
)

func main() {
	if err := internal.DisableCoreDumps(); err != nil {
		internal.Echo("Warning: could not disable core dumps: %v", err)
	}

	var (
		createFlag   bool
		shamirFlag   string
		plainFlag    int
		extendedFlag bool
		statusFlag   bool
	)
	flags := flag.NewFlagSet("keylocker", flag.ContinueOnError)
	flags.BoolVar(&createFlag, "create", false, "Initialize a new hidden region and KeyFile instead of operating on an existing one.")
	flags.StringVar(&shamirFlag, "shamir", "", "Override the default Shamir share count and threshold, given as N/T.")
	flags.IntVar(&plainFlag, "plain", 0, "Select plain mode with the given number of duplicate slots, instead of Shamir.")
	flags.BoolVar(&extendedFlag, "extended", false, "Use double-size slots for entries that don't fit the default slot size.")
	flags.BoolVar(&statusFlag, "status", false, "Show a visual occupancy estimate for the KeyFile's slot area instead of reading or writing an entry.")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, `
keylocker stores secrets in a steganographic key vault: a byte region that, without the right password, is indistinguishable from uniform random noise.

USAGE:  keylocker [FLAGS] KEYFILE_TARGET DEVICE_TARGET [ENTRY_LABEL] [START_SPEC LENGTH_SPEC]

ARGS:
    KEYFILE_TARGET is the file or block device holding the KeyFile region.
    DEVICE_TARGET  is the identifier of the device the protected secret lives on, mixed into key derivation.
    ENTRY_LABEL    is an optional free-text note stored alongside the entry.
    START_SPEC and LENGTH_SPEC are only consumed with --create: integers with optional K/M/G suffix, a leading
                   "-" for end-relative, or "<partition>+<delta>" for partition-relative.

FLAGS:
%s`, flags.FlagUsages())
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		flags.Usage()
		os.Exit(exitUsageError)
	}

	mode, err := resolveMode(shamirFlag, plainFlag)
	if err != nil {
		internal.Echo("%v", err)
		os.Exit(exitUsageError)
	}
	slotSize := keylocker.SlotSize
	if extendedFlag {
		slotSize = keylocker.ExtendedSlotSize
	}

	if flags.NArg() < 2 {
		flags.Usage()
		os.Exit(exitUsageError)
	}
	keyfileTarget := flags.Arg(0)
	deviceTarget := flags.Arg(1)
	entryLabel := ""
	if flags.NArg() >= 3 {
		entryLabel = flags.Arg(2)
	}

	rnd, err := entropy.New()
	if err != nil {
		internal.Echo("Failed to initialize entropy source: %v", err)
		os.Exit(exitIoError)
	}
	deriver, err := keylocker.NewDeriver()
	if err != nil {
		internal.Echo("Failed to initialize key deriver: %v", err)
		os.Exit(exitIoError)
	}

	var r region.Region
	if createFlag {
		startSpec, lengthSpec := "", ""
		if flags.NArg() >= 4 {
			startSpec = flags.Arg(flags.NArg() - 2)
			lengthSpec = flags.Arg(flags.NArg() - 1)
		}
		r, err = region.Open(keyfileTarget, startSpec, lengthSpec)
	} else {
		r, err = region.OpenWhole(keyfileTarget)
	}
	if err != nil {
		internal.Echo("Failed to open %s: %v", keyfileTarget, err)
		os.Exit(exitIoError)
	}
	defer r.Close()

	var kf *keylocker.KeyFile
	if createFlag {
		kf, err = keylocker.Create(r, slotSize, deriver, rnd)
	} else {
		kf, err = keylocker.Open(r, slotSize, deriver)
	}
	if err != nil {
		internal.Echo("Failed to prepare KeyFile: %v", err)
		os.Exit(exitIoError)
	}

	if statusFlag {
		if err := status.Show(kf, rnd); err != nil {
			internal.Echo("Failed to render status view: %v", err)
			os.Exit(exitIoError)
		}
		return
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		internal.Echo("Failed to read passphrase: %v", err)
		os.Exit(exitIoError)
	}
	pass := keylocker.Passphrase(passBytes)
	defer secret.Wipe(pass)

	device := keylocker.DeviceID(deviceTarget)

	if createFlag && entryLabel != "" {
		entry := keylocker.Entry{
			Device: deviceTarget,
			Text:   entryLabel,
		}
		result, err := kf.Put(pass, device, entry, mode, rnd)
		if err != nil {
			internal.Echo("Failed to store entry: %v", err)
			secret.Wipe(pass)
			os.Exit(exitIoError)
		}
		if result.Overwrote {
			internal.Echo("Warning: this entry's slots overlapped an existing entry, which is now unrecoverable through this password/device pairing.")
		}
		return
	}

	entry, err := kf.Get(pass, device, mode)
	if err != nil {
		internal.Echo("No entry recovered for that passphrase and device.")
		secret.Wipe(pass)
		os.Exit(exitBadPassword)
	}
	fmt.Printf("%s\t%d\t%d\t%x\t%s\n", entry.Device, entry.Start, entry.Length, entry.Key, entry.Text)
}

// resolveMode turns the --shamir and --plain flags into a keylocker.Mode,
// defaulting to keylocker.DefaultMode when neither is given.
func resolveMode(shamirSpec string, plainCopies int) (keylocker.Mode, error) {
	if shamirSpec != "" && plainCopies > 0 {
		return keylocker.Mode{}, fmt.Errorf("--shamir and --plain are mutually exclusive")
	}
	if plainCopies > 0 {
		return keylocker.PlainMode(plainCopies), nil
	}
	if shamirSpec == "" {
		return keylocker.DefaultMode(), nil
	}
	var n, t int
	if _, err := fmt.Sscanf(shamirSpec, "%d/%d", &n, &t); err != nil {
		return keylocker.Mode{}, fmt.Errorf("invalid --shamir value %q, expected N/T", shamirSpec)
	}
	return keylocker.ShamirMode(n, t), nil
}
