// ABOUTME: Built-in regular-expression rules mapping patch names to tags
// ABOUTME: Patterns cover the naming conventions seen in community patch banks
package library

// DefaultNameRules maps tag names to regular expressions run against patch
// display names (case-insensitively) by TagsFromRules.
var DefaultNameRules = map[string]string{
	"Accordion":     `acc(ord.on|\b)`,
	"Acid":          `acid|303`,
	"Acoustic":      `acoustic`,
	"Air":           `\bair`,
	"Arp":           `[^h]arp|peggi`,
	"Bass":          `^((?!drum).)*bass(?!oon)|\bb[as]\b`,
	"Bell":          `bell(s|z|\b)`,
	"Brass":         `bra?s|horn|trumpet|trombone`,
	"Breath":        `breath`,
	"Build":         `\bbuild`,
	"Choir":         `choir`,
	"Clap":          `clap`,
	"Clav":          `clav`,
	"Crash & Sweep": `crash|sweep`,
	"Cymbal":        `crash|cym(bal)?|\bride|\brd\b`,
	"Drop":          `\bdrop`,
	"Drum":          `dru?m|snar|tom|kic?k|taiko|timpani`,
	"Flanger":       `flang`,
	"FM":            `fm`,
	"FX":            `fx|\bhit|effect|echo\b|noise|drone`,
	"Guitar":        `-string\b|g(u?i)?ta?r|pick`,
	"Harp":          `\bharp(?!si)`,
	"Harpsichord":   `harpsi`,
	"Hat":           `(hi-?|\b)hat(s|z|\b)|(((closed|open).?)|(?=.*?cym).*)hi`,
	"Horn":          `horn|trumpet|trombone`,
	"Keys":          `\bke?y`,
	"Kick":          `kic?k`,
	"Lead":          `lead|\bld\b|le?a?d.?(]|:)`,
	"Lo-fi":         `lo-?fi`,
	"Mono":          `mono`,
	"Organ":         `\borg|wurl`,
	"Pad":           `pa?d`,
	"Percussion":    `pe?rc|tamb`,
	"Piano":         `piano`,
	"Pizzicato":     `pizz(i|\b|.cato)`,
	"Pluck":         `pl(u|c|uc)?k`,
	"Poly":          `poly`,
	"PWM":           `pwm`,
	"Reverse":       `reverse`,
	"Ride":          `ride|\brd\b`,
	"Saw":           `saw`,
	"Sitar":         `sitar`,
	"Snare":         `snar`,
	"Square":        `square`,
	"Stab":          `\bstab`,
	"Steel Drum":    `^(?!.*?(?:g(u?i)?ta?r|pick|string)).*steel`,
	"String":        `(?!-)string|cello|violin|fiddle`,
	"Sub":           `sub`,
	"Tom":           `tom`,
	"Triangle":      `triang`,
	"Trombone":      `trombone`,
	"Trumpet":       `trumpet`,
	"Voice":         `choir|voice|voc(?!oder)|vox|goblin`,
	"Wah":           `wah`,
	"Whistle":       `whistl`,
	"Wind":          `wi?nd|clarinet|flute|piccolo|recorder|bassoon`,
	"Wood":          `wood`,
}
