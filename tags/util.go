package tags

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// func LoadTagFile {{{

// This returns a Tags for all the tags contained within the given file.
// The file format is a UTF-8 text file, one tag per-line.
func LoadTagFile(ffs fs.FS, file string) (Tags, error) {
	var newTags Tags

	// Now open the file for reading.
	f, err := ffs.Open(file)
	if err != nil {
		return newTags, err
	}

	defer f.Close()

	// Our new buffer for reading a single line at a time.
	buf := bufio.NewReader(f)

	for {
		line, err := buf.ReadString('\n')
		if err != nil && err != io.EOF {
			return newTags, fmt.Errorf("read(%s): %w", file, err)
		}

		// Strip any spaces from tag.
		line = strings.TrimSpace(line)

		// Skip empty tags, absurdly long tags (WTH dude?) and comment lines.
		if line != "" && len(line) <= 100 && !strings.HasPrefix(line, "#") {
			// Add handles normalizing and duplicates for us.
			newTags = newTags.Add(line)
		}

		// A file without a final newline still gets its last tag kept,
		// ReadString hands us the leftover together with EOF.
		if err == io.EOF {
			break
		}
	}

	// Fix the tags
	newTags = newTags.Fix()

	return newTags, nil
} // }}}

// func LoadRuleFile {{{

// Loads a YAML file of tag rules.
//
// The file is a plain list -
//
//   - tag: staff
//     any: [ admin, editor ]
//   - tag: reviewer
//     expr: (editor|admin) & !suspended
//
// Rules come back in file order, ready for Apply().
func LoadRuleFile(ffs fs.FS, file string) (TagRules, error) {
	f, err := ffs.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read(%s): %w", file, err)
	}

	var ctrs ConfTagRules

	if err := yaml.Unmarshal(data, &ctrs); err != nil {
		return nil, fmt.Errorf("parse(%s): %w", file, err)
	}

	trs, err := ctrs.Make()
	if err != nil {
		return nil, fmt.Errorf("rules(%s): %w", file, err)
	}

	return trs, nil
} // }}}
