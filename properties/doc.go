// Package properties implements the delimiter-based property string used to carry
// subscriber metadata, such as "reliability=best_effort;mode=pull;period=100ms".
//
// Format:
//
//	key=value;key2=v1|v2;flag
//
// Pairs are separated by ';', a key is separated from its value by '=', and a value may
// hold several entries separated by '|'. A key without '=' has an empty value. Trailing
// separators are trimmed, empty keys are skipped, and inserting an existing key replaces
// it (last insert wins).
package properties
