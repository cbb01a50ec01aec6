// Copyright 2026 Tibor Dome
// SPDX-License-Identifier: BSD-3-Clause

package nmea

import (
	"fmt"
	"strings"
)

type Sentence struct {
	Type string
	Data []string
}

func checksum(s string) string {
	var sum uint8
	for i := 0; i < len(s); i++ {
		sum ^= s[i]
	}

	return fmt.Sprintf("%02X", sum)
}

func (s Sentence) String() string {
	sentence := s.Type
	for _, d := range s.Data {
		sentence = fmt.Sprintf("%s,%s", sentence, d)
	}

	if len(s.Data) == 0 {
		// always make sure the type is followed by a comma if there is no data
		sentence = fmt.Sprintf("%s,", sentence)
	}

	str := fmt.Sprintf("$%s*%s", sentence, checksum(sentence))
	return str
}

func (s Sentence) Bytes() []byte {
	return []byte(s.String())
}

// Parse validates the framing and checksum of a raw sentence (without the
// trailing CRLF) and splits it into its type and data fields.
func Parse(raw []byte) (s Sentence, err error) {
	line := string(raw)
	if len(line) < 4 || line[0] != '$' {
		err = fmt.Errorf("nmea.Parse: not a sentence: %q", line)
		return
	}

	star := strings.LastIndexByte(line, '*')
	if star < 0 || len(line)-star != 3 {
		err = fmt.Errorf("nmea.Parse: missing checksum: %q", line)
		return
	}

	body := line[1:star]
	if got, want := line[star+1:], checksum(body); !strings.EqualFold(got, want) {
		err = fmt.Errorf("nmea.Parse: checksum mismatch: got %s, want %s", got, want)
		return
	}

	fields := strings.Split(body, ",")
	s.Type = fields[0]
	s.Data = append(s.Data, fields[1:]...)
	return
}
