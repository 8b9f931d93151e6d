// Package gm holds General MIDI level 1 names for programs, drum kits and
// percussion keys.
package gm

import "fmt"

// PercussionChannel is the zero-based channel GM reserves for drums.
const PercussionChannel = 9

// Program names indexed by the zero-based program number sent on the wire.
var programs = [128]string{
	"Acoustic Grand Piano",
	"Bright Acoustic Piano",
	"Electric Grand Piano",
	"Honky-tonk Piano",
	"Electric Piano 1 (Rhodes Piano)",
	"Electric Piano 2 (Chorused Piano)",
	"Harpsichord",
	"Clavinet",
	"Celesta",
	"Glockenspiel",
	"Music Box",
	"Vibraphone",
	"Marimba",
	"Xylophone",
	"Tubular Bells",
	"Dulcimer (Santur)",
	"Drawbar Organ (Hammond)",
	"Percussive Organ",
	"Rock Organ",
	"Church Organ",
	"Reed Organ",
	"Accordion (French)",
	"Harmonica",
	"Tango Accordion (Band neon)",
	"Acoustic Guitar (nylon)",
	"Acoustic Guitar (steel)",
	"Electric Guitar (jazz)",
	"Electric Guitar (clean)",
	"Electric Guitar (muted)",
	"Overdriven Guitar",
	"Distortion Guitar",
	"Guitar harmonics",
	"Acoustic Bass",
	"Electric Bass (fingered)",
	"Electric Bass (picked)",
	"Fretless Bass",
	"Slap Bass 1",
	"Slap Bass 2",
	"Synth Bass 1",
	"Synth Bass 2",
	"Violin",
	"Viola",
	"Cello",
	"Contrabass",
	"Tremolo Strings",
	"Pizzicato Strings",
	"Orchestral Harp",
	"Timpani",
	"String Ensemble 1 (strings)",
	"String Ensemble 2 (slow strings)",
	"SynthStrings 1",
	"SynthStrings 2",
	"Choir Aahs",
	"Voice Oohs",
	"Synth Voice",
	"Orchestra Hit",
	"Trumpet",
	"Trombone",
	"Tuba",
	"Muted Trumpet",
	"French Horn",
	"Brass Section",
	"SynthBrass 1",
	"SynthBrass 2",
	"Soprano Sax",
	"Alto Sax",
	"Tenor Sax",
	"Baritone Sax",
	"Oboe",
	"English Horn",
	"Bassoon",
	"Clarinet",
	"Piccolo",
	"Flute",
	"Recorder",
	"Pan Flute",
	"Blown Bottle",
	"Shakuhachi",
	"Whistle",
	"Ocarina",
	"Lead 1 (square wave)",
	"Lead 2 (sawtooth wave)",
	"Lead 3 (calliope)",
	"Lead 4 (chiffer)",
	"Lead 5 (charang)",
	"Lead 6 (voice solo)",
	"Lead 7 (fifths)",
	"Lead 8 (bass + lead)",
	"Pad 1 (new age Fantasia)",
	"Pad 2 (warm)",
	"Pad 3 (polysynth)",
	"Pad 4 (choir space voice)",
	"Pad 5 (bowed glass)",
	"Pad 6 (metallic pro)",
	"Pad 7 (halo)",
	"Pad 8 (sweep)",
	"FX 1 (rain)",
	"FX 2 (soundtrack)",
	"FX 3 (crystal)",
	"FX 4 (atmosphere)",
	"FX 5 (brightness)",
	"FX 6 (goblins)",
	"FX 7 (echoes, drops)",
	"FX 8 (sci-fi, star theme)",
	"Sitar",
	"Banjo",
	"Shamisen",
	"Koto",
	"Kalimba",
	"Bag pipe",
	"Fiddle",
	"Shanai",
	"Tinkle Bell",
	"Agogo",
	"Steel Drums",
	"Woodblock",
	"Taiko Drum",
	"Melodic Tom",
	"Synth Drum",
	"Reverse Cymbal",
	"Guitar Fret Noise",
	"Breath Noise",
	"Seashore",
	"Bird Tweet",
	"Telephone Ring",
	"Helicopter",
	"Applause",
	"Gunshot",
}

// Drum kit names keyed by zero-based program number.
var kits = map[uint8]string{
	0: "Standard Kit",
	8: "Room Kit",
	16: "Power Kit",
	24: "Electronic Kit",
	25: "TR-808 Kit",
	32: "Jazz Kit",
	40: "Brush Kit",
	48: "Orchestra Kit",
	56: "Sound FX Kit",
}

// Percussion key names on the drum channel.
var drumKeys = map[uint8]string{
	35: "Acoustic Bass Drum",
	36: "Bass Drum 1",
	37: "Side Stick",
	38: "Acoustic Snare",
	39: "Hand Clap",
	40: "Electric Snare",
	41: "Low Floor Tom",
	42: "Closed Hi Hat",
	43: "High Floor Tom",
	44: "Pedal Hi-Hat",
	45: "Low Tom",
	46: "Open Hi-Hat",
	47: "Low-Mid Tom",
	48: "Hi Mid Tom",
	49: "Crash Cymbal 1",
	50: "High Tom",
	51: "Ride Cymbal 1",
	52: "Chinese Cymbal",
	53: "Ride Bell",
	54: "Tambourine",
	55: "Splash Cymbal",
	56: "Cowbell",
	57: "Crash Cymbal 2",
	58: "Vibraslap",
	59: "Ride Cymbal 2",
	60: "Hi Bongo",
	61: "Low Bongo",
	62: "Mute Hi Conga",
	63: "Open Hi Conga",
	64: "Low Conga",
	65: "High Timbale",
	66: "Low Timbale",
	67: "High Agogo",
	68: "Low Agogo",
	69: "Cabasa",
	70: "Maracas",
	71: "Short Whistle",
	72: "Long Whistle",
	73: "Short Guiro",
	74: "Long Guiro",
	75: "Claves",
	76: "Hi Wood Block",
	77: "Low Wood Block",
	78: "Mute Cuica",
	79: "Open Cuica",
	80: "Mute Triangle",
	81: "Open Triangle",
}

// ProgramName returns the GM name of a zero-based program number.
func ProgramName(program uint8) string {
	if int(program) >= len(programs) {
		return fmt.Sprintf("Program %d", program)
	}
	return programs[program]
}

// KitName returns the drum kit selected by program on the percussion channel.
// ok is false for programs that are not a GM kit.
func KitName(program uint8) (name string, ok bool) {
	name, ok = kits[program]
	return name, ok
}

// DrumKeyName returns the percussion sound mapped to key, or "" outside the
// GM percussion range.
func DrumKeyName(key uint8) string {
	return drumKeys[key]
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName spells a MIDI key with octave numbers where 60 is C4.
func NoteName(key uint8) string {
	return fmt.Sprintf("%s%d", noteNames[key%12], int(key)/12-1)
}

// InstrumentName describes what a program change selects on channel.
func InstrumentName(channel int, program uint8) string {
	if channel == PercussionChannel {
		if name, ok := KitName(program); ok {
			return name
		}
		return fmt.Sprintf("Kit %d", program)
	}
	return ProgramName(program)
}
