/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// StyleSheet provides hierarchical resolution of TextStyle presets.
// It supports three scopes:
//   - Global: app defaults or builtins
//   - Book: styles defined for the current book
//   - Spread: overrides specific to a single spread
//
// Resolution precedence is Spread > Book > Global > Builtin.
// Builtins are provided by styles.go (builtinStyles map).
//
// This is an in-memory helper to keep UI and storage decoupled; book code
// populates the Book and Spread maps as needed.

type StyleSheet struct {
	Global map[string]TextStyle
	Book   map[string]TextStyle
	Spread map[string]TextStyle
}

// NewStyleSheet creates a stylesheet with empty scopes and builtin styles
// copied into Global for convenience.
func NewStyleSheet() *StyleSheet {
	ss := &StyleSheet{
		Global: map[string]TextStyle{},
		Book:   map[string]TextStyle{},
		Spread: map[string]TextStyle{},
	}
	for _, name := range ListStyles() {
		if st, ok := GetStyle(name); ok {
			ss.Global[name] = st
		}
	}
	return ss
}

// WithBook returns a copy with the provided book-level overrides merged.
func (s *StyleSheet) WithBook(over map[string]TextStyle) *StyleSheet {
	cp := s.clone()
	for k, v := range over {
		cp.Book[k] = v
	}
	return cp
}

// WithSpread returns a copy with the provided spread-level overrides merged.
func (s *StyleSheet) WithSpread(over map[string]TextStyle) *StyleSheet {
	cp := s.clone()
	for k, v := range over {
		cp.Spread[k] = v
	}
	return cp
}

// Resolve returns the effective TextStyle by name using precedence
// Spread > Book > Global > Builtin. The second return value is false if the
// name cannot be resolved at any level.
func (s *StyleSheet) Resolve(name string) (TextStyle, bool) {
	if s == nil {
		return TextStyle{}, false
	}
	if st, ok := s.Spread[name]; ok {
		return st, true
	}
	if st, ok := s.Book[name]; ok {
		return st, true
	}
	if st, ok := s.Global[name]; ok {
		return st, true
	}
	if st, ok := GetStyle(name); ok {
		return st, true
	}
	return TextStyle{}, false
}

// Names returns the set of known style names considering all scopes.
// Builtins come first in ListStyles order, then additional names in stable
// insertion order.
func (s *StyleSheet) Names() []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range ListStyles() {
		if _, ok := s.Resolve(name); ok {
			out = append(out, name)
			seen[name] = true
		}
	}
	collect := func(m map[string]TextStyle) {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	collect(s.Global)
	collect(s.Book)
	collect(s.Spread)
	return out
}

func (s *StyleSheet) clone() *StyleSheet {
	cp := &StyleSheet{Global: map[string]TextStyle{}, Book: map[string]TextStyle{}, Spread: map[string]TextStyle{}}
	for k, v := range s.Global {
		cp.Global[k] = v
	}
	for k, v := range s.Book {
		cp.Book[k] = v
	}
	for k, v := range s.Spread {
		cp.Spread[k] = v
	}
	return cp
}
