/*
Package keylocker implements a steganographic key vault: a single opaque
byte region (a KeyFile) that stores an unbounded number of independent
secrets such that, without the correct password, the region is
indistinguishable from uniform random bytes, and recovering one entry
reveals nothing about the existence, count, or location of any other entry.

# How it works:

A KeyFile is a head salt, an array of fixed-size slots, and a tail salt
(region.Region provides the addressable byte range; KeyFile never assumes a
particular storage medium). A password together with a device identifier
deterministically selects a handful of slot positions and per-slot keys
(Deriver); an Entry (device id, byte range, cipher key, optional text) is
serialized and checksummed (Entry.Marshal), then either split into Shamir
shares or duplicated as plain copies (Shamir/Plain mode) and written to
those slots (KeyFile.Put). Reading (KeyFile.Get) rederives the same
positions and keys from the password and device id, decrypts whatever is
there, and reconstructs the entry if enough of it survived — tolerating
later Put calls overwriting some of its slots.

# General guidelines:
  - Every byte written by Create, Put, or Wipe is either uniform random or
    ciphertext under a streaming cipher, so the file never contains a
    recognizable header, version marker, or free-list. There is
    deliberately no way to enumerate what a KeyFile holds.
  - Put and Get both require the original password and device identifier;
    a wrong password doesn't fail loudly, it just derives different slot
    positions and produces garbage on decryption, which is indistinguishable
    from "no entry exists here".
  - Shamir mode tolerates losing shares to a later Put's slot collisions;
    Plain mode is simpler and cheaper but loses the entry as soon as every
    copy is overwritten.
*/
package keylocker
