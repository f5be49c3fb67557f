package keylocker

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/SurpriseDog/KeyLocker/pkg/region"
)

// writeChunk bounds how much random fill KeyFile.Create and KeyFile.Wipe
// buffer in memory per Region.Write call.
const writeChunk = 1 << 16

// KeyFile is a steganographic vault over a Region: a head salt, an array
// of fixed-size slots, and a tail salt. Every byte is either uniform
// random or ciphertext under a streaming cipher; there is no header,
// version marker, or free-list anywhere in the layout.
type KeyFile struct {
	region    region.Region
	deriver   *Deriver
	slotSize  int
	slotCount int
}

// PutResult reports what Put observed about the slots it wrote.
type PutResult struct {
	// Overwrote is true if at least one of the slots this Put touched
	// already tag-decoded under this same (pass, device) pair's derived
	// key — i.e. a previous Put under the same password left an entry
	// there. The check re-derives each slot's key from this call's own
	// password before decoding, so it can only ever recognize the
	// caller's own prior entry; a slot holding someone else's entry
	// under a different password decodes as noise and tag-validates at
	// the checksum's ~2⁻⁶⁴ false-positive rate, same as any other random
	// slot.
	Overwrote bool
}

// layoutSlotCount returns how many slots of slotSize fit in a region of
// regionSize bytes once the head and tail salts are subtracted. The salt
// size equals one slot, so L = 2*slotSize + K*slotSize and
// K = floor((L - 2*slotSize) / slotSize).
func layoutSlotCount(regionSize int64, slotSize int) int {
	if slotSize <= 0 {
		return 0
	}
	avail := regionSize - 2*int64(slotSize)
	if avail <= 0 {
		return 0
	}
	return int(avail / int64(slotSize))
}

// Create lays out a fresh KeyFile across r: a random head salt, K slots
// of slotSize filled with indistinguishable random noise, and a random
// tail salt. Every byte r holds after Create is uniform random; nothing
// about K or slotSize is recoverable from the bytes themselves.
func Create(r region.Region, slotSize uint16, deriver *Deriver, rnd randomSource) (*KeyFile, error) {
	k := layoutSlotCount(r.Size(), int(slotSize))
	if k < DefaultShamirT {
		return nil, ErrRegionTooSmall
	}
	if err := fillRandom(r, rnd); err != nil {
		return nil, fmt.Errorf("keylocker: initializing keyfile: %w", err)
	}
	return &KeyFile{region: r, deriver: deriver, slotSize: int(slotSize), slotCount: k}, nil
}

// Open attaches a KeyFile view to a Region that Create has already laid
// out. Open never inspects the region's contents — there is nothing in
// them to identify a KeyFile by — so slotSize must be supplied by the
// caller exactly as it was at Create time.
func Open(r region.Region, slotSize uint16, deriver *Deriver) (*KeyFile, error) {
	k := layoutSlotCount(r.Size(), int(slotSize))
	if k < DefaultShamirT {
		return nil, ErrRegionTooSmall
	}
	return &KeyFile{region: r, deriver: deriver, slotSize: int(slotSize), slotCount: k}, nil
}

// SlotCount returns how many slot positions this KeyFile's layout holds.
func (kf *KeyFile) SlotCount() int { return kf.slotCount }

func (kf *KeyFile) headSalt() ([]byte, error) {
	return kf.region.Read(0, kf.slotSize)
}

func (kf *KeyFile) tailSalt() ([]byte, error) {
	return kf.region.Read(kf.tailOffset(), kf.slotSize)
}

func (kf *KeyFile) tailOffset() int64 {
	return int64(kf.slotSize) + int64(kf.slotCount)*int64(kf.slotSize)
}

func (kf *KeyFile) slotOffset(idx int) int64 {
	return int64(kf.slotSize) + int64(idx)*int64(kf.slotSize)
}

// payloadCapacity returns the maximum length of the bytes handed to
// EncodeSlotPayload for one slot of this mode: Shamir share records carry
// an extra leading x-coordinate byte that Plain copies don't.
func (kf *KeyFile) payloadCapacity(mode Mode) int {
	capacity := kf.slotSize - slotHeaderLen
	if mode.IsShamir() {
		capacity--
	}
	return capacity
}

// salts reads the head and tail salts used as Deriver input.
func (kf *KeyFile) salts() (head, tail []byte, err error) {
	head, err = kf.headSalt()
	if err != nil {
		return nil, nil, err
	}
	tail, err = kf.tailSalt()
	if err != nil {
		return nil, nil, err
	}
	return head, tail, nil
}

// Put derives this entry's slot positions from pass and device, splits
// or duplicates its serialized form per mode, and writes it. It reports
// whether any touched slot already decoded under this same password, so
// a caller can warn about overwriting their own prior entry without
// KeyFile itself producing output.
func (kf *KeyFile) Put(pass Passphrase, device DeviceID, entry Entry, mode Mode, rnd randomSource) (PutResult, error) {
	if err := mode.validate(); err != nil {
		return PutResult{}, err
	}
	if mode.SlotCount() > kf.slotCount {
		return PutResult{}, ErrRegionTooSmall
	}

	head, tail, err := kf.salts()
	if err != nil {
		return PutResult{}, err
	}
	master, err := kf.deriver.MasterKey(pass, head, tail, device)
	if err != nil {
		return PutResult{}, err
	}
	defer master.Wipe()

	encoded, err := entry.Marshal()
	if err != nil {
		return PutResult{}, err
	}
	if len(encoded) > kf.payloadCapacity(mode) {
		return PutResult{}, ErrEntryTooLarge
	}

	payloads, err := kf.buildPayloads(encoded, mode, rnd)
	if err != nil {
		return PutResult{}, err
	}

	indices, err := kf.deriver.SlotIndices(master.Bytes(), mode.SlotCount(), kf.slotCount)
	if err != nil {
		return PutResult{}, err
	}

	var result PutResult
	for i, idx := range indices {
		offset := kf.slotOffset(idx)
		slotKey := kf.deriver.SlotKey(master.Bytes(), idx)
		slotNonce := kf.deriver.SlotNonce(master.Bytes(), idx)

		if existing, err := ReadSlot(kf.region, offset, kf.slotSize, slotKey, slotNonce); err == nil {
			if _, ok := DecodeSlotPayload(existing); ok {
				result.Overwrote = true
			}
		}

		tagged, err := EncodeSlotPayload(payloads[i], kf.slotSize, rnd)
		if err != nil {
			return PutResult{}, err
		}
		if err := WriteSlot(kf.region, offset, slotKey, slotNonce, tagged); err != nil {
			return PutResult{}, err
		}
	}
	return result, nil
}

// buildPayloads turns encoded into the per-slot byte slices Put writes:
// Shamir share records (x-coordinate byte, then share data) in Shamir
// mode, or mode.Copies duplicates of encoded itself in Plain mode.
func (kf *KeyFile) buildPayloads(encoded []byte, mode Mode, rnd randomSource) ([][]byte, error) {
	if !mode.IsShamir() {
		payloads := make([][]byte, mode.Copies)
		for i := range payloads {
			payloads[i] = encoded
		}
		return payloads, nil
	}
	shares, err := Split(encoded, mode.N, mode.T, rnd)
	if err != nil {
		return nil, err
	}
	payloads := make([][]byte, len(shares))
	for i, s := range shares {
		payloads[i] = append([]byte{s.X}, s.Data...)
	}
	return payloads, nil
}

// Get rederives this entry's slot positions from pass and device,
// decrypts whatever survives there, and reconstructs the entry. Every
// failure mode — wrong password, wrong device id, or too many slots lost
// to later Puts — collapses to ErrNoEntry.
func (kf *KeyFile) Get(pass Passphrase, device DeviceID, mode Mode) (Entry, error) {
	if err := mode.validate(); err != nil {
		return Entry{}, err
	}
	head, tail, err := kf.salts()
	if err != nil {
		return Entry{}, err
	}
	master, err := kf.deriver.MasterKey(pass, head, tail, device)
	if err != nil {
		return Entry{}, err
	}
	defer master.Wipe()

	indices, err := kf.deriver.SlotIndices(master.Bytes(), mode.SlotCount(), kf.slotCount)
	if err != nil {
		return Entry{}, ErrNoEntry
	}

	if mode.IsShamir() {
		return kf.getShamir(master.Bytes(), indices, mode.T)
	}
	return kf.getPlain(master.Bytes(), indices)
}

func (kf *KeyFile) getShamir(master []byte, indices []int, threshold int) (Entry, error) {
	var shares []Share
	for _, idx := range indices {
		data, ok := kf.decodeSlot(master, idx)
		if !ok || len(data) < 1 {
			continue
		}
		shares = append(shares, Share{X: data[0], Data: data[1:]})
	}

	var recovered Entry
	_, err := Combine(shares, threshold, func(candidate []byte) bool {
		e, err := Unmarshal(candidate)
		if err != nil {
			return false
		}
		recovered = e
		return true
	})
	if err != nil {
		return Entry{}, ErrNoEntry
	}
	return recovered, nil
}

func (kf *KeyFile) getPlain(master []byte, indices []int) (Entry, error) {
	for _, idx := range indices {
		data, ok := kf.decodeSlot(master, idx)
		if !ok {
			continue
		}
		if e, err := Unmarshal(data); err == nil {
			return e, nil
		}
	}
	return Entry{}, ErrNoEntry
}

func (kf *KeyFile) decodeSlot(master []byte, idx int) ([]byte, bool) {
	offset := kf.slotOffset(idx)
	slotKey := kf.deriver.SlotKey(master, idx)
	slotNonce := kf.deriver.SlotNonce(master, idx)
	plain, err := ReadSlot(kf.region, offset, kf.slotSize, slotKey, slotNonce)
	if err != nil {
		return nil, false
	}
	return DecodeSlotPayload(plain)
}

// Wipe overwrites the entire region with fresh random bytes, passes
// times (three by default). It returns an advisory rather than logging,
// since KeyFile is a library and has no business writing to a terminal.
func (kf *KeyFile) Wipe(rnd randomSource, passes int) (string, error) {
	if passes <= 0 {
		passes = 3
	}
	for i := 0; i < passes; i++ {
		if err := fillRandom(kf.region, rnd); err != nil {
			return "", fmt.Errorf("keylocker: wiping keyfile: %w", err)
		}
	}
	return "overwritten at the block layer; flash-backed storage may retain " +
		"remapped copies of prior contents that this interface cannot reach " +
		"without the device's own secure-erase.", nil
}

// fillRandom overwrites every byte of r with fresh random output, in
// bounded chunks so Create and Wipe don't allocate the whole region at
// once.
func fillRandom(r region.Region, rnd randomSource) error {
	size := r.Size()
	for pos := int64(0); pos < size; pos += writeChunk {
		n := writeChunk
		if remaining := size - pos; remaining < int64(n) {
			n = int(remaining)
		}
		buf, err := rnd.Random(n)
		if err != nil {
			return err
		}
		if err := r.Write(pos, buf); err != nil {
			return err
		}
	}
	return nil
}

// EstimateOccupancy is the exported entry point status displays use to
// get a plausible "occupied slot" figure for a KeyFile of the given slot
// count. See pickDecoyCount.
func EstimateOccupancy(slotCount int, rnd randomSource) (int, error) {
	return pickDecoyCount(slotCount, rnd)
}

// pickDecoyCount log-normal samples a plausible "occupied slot" estimate
// for status displays, grounded on original_source/slots.py's
// get_slot_count: since a KeyFile's true entry count is unknowable from
// its bytes by design, the status view never reports a count, only this
// kind of plausible guess, so it can never be used to bound a brute-force
// search.
func pickDecoyCount(slotCount int, rnd randomSource) (int, error) {
	if slotCount <= 0 {
		return 0, nil
	}
	raw, err := rnd.Random(16)
	if err != nil {
		return 0, err
	}
	u1 := uniformFloat(raw[0:8])
	u2 := uniformFloat(raw[8:16])
	// Box-Muller transform to a standard normal, then exponentiate for a
	// log-normal variable centered so its median sits near a quarter of
	// the available slots.
	z := math.Sqrt(-2*math.Log(u1+1e-12)) * math.Cos(2*math.Pi*u2)
	mu := math.Log(float64(slotCount) / 4)
	sigma := 0.6
	sample := math.Exp(mu + sigma*z)

	count := int(math.Round(sample))
	if count < 0 {
		count = 0
	}
	if count > slotCount {
		count = slotCount
	}
	return count, nil
}

func uniformFloat(b []byte) float64 {
	v := binary.BigEndian.Uint64(b)
	return float64(v) / float64(math.MaxUint64)
}
