/*
 * RV64 - Command parser.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package parser implements the console monitor's command line:
// examine/deposit of registers, CSRs, and physical memory, plus
// run-control (start/stop/continue/ipl/quit).
package parser

import (
	"errors"
	"strings"

	master "github.com/rcornwell/rv64emu/emu/master"
)

type cmd struct {
	name     string
	min      int
	process  func(*cmdLine, chan master.Packet) (bool, error)
	complete func(*cmdLine) []string
}

type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{name: "examine", min: 2, process: examine},
	{name: "deposit", min: 2, process: deposit},
	{name: "start", min: 3, process: start},
	{name: "continue", min: 1, process: cont},
	{name: "stop", min: 3, process: stop},
	{name: "ipl", min: 1, process: ipl},
	{name: "quit", min: 1, process: quit},
}

// ProcessCommand parses and runs one command line against the running
// core, identified by its master channel.
func ProcessCommand(commandLine string, master chan master.Packet) (bool, error) {
	line := cmdLine{line: commandLine}
	word := line.getWord(false)
	if word == "" {
		return false, nil
	}

	match := matchList(word)
	if len(match) == 0 {
		return false, errors.New("command not found: " + word)
	}
	if len(match) > 1 {
		return false, errors.New("ambiguous command: " + word)
	}

	return match[0].process(&line, master)
}

// CompleteCmd offers line-editing completion candidates for the
// partial command line given.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord(false)

	if !line.isEOL() && line.line[line.pos] == ' ' {
		line.skipSpace()
		match := matchList(name)
		if len(match) != 1 || match[0].complete == nil {
			return nil
		}
		return match[0].complete(&line)
	}

	match := matchList(name)
	names := make([]string, len(match))
	for i, m := range match {
		names[i] = m.name
	}
	return names
}

// matchList returns every command whose name has word as a prefix of
// at least its minimum unique-abbreviation length.
func matchList(word string) []cmd {
	if word == "" {
		return nil
	}
	var out []cmd
	for _, c := range cmdList {
		if len(word) < c.min || len(word) > len(c.name) {
			continue
		}
		if c.name[:len(word)] == word {
			out = append(out, c)
		}
	}
	return out
}

func (l *cmdLine) isEOL() bool {
	return l.pos >= len(l.line)
}

func (l *cmdLine) skipSpace() {
	for !l.isEOL() && l.line[l.pos] == ' ' {
		l.pos++
	}
}

// getWord returns the next whitespace-delimited token, lower-cased
// unless keepCase is set.
func (l *cmdLine) getWord(keepCase bool) string {
	l.skipSpace()
	start := l.pos
	for !l.isEOL() && l.line[l.pos] != ' ' {
		l.pos++
	}
	word := l.line[start:l.pos]
	if !keepCase {
		word = strings.ToLower(word)
	}
	return word
}
