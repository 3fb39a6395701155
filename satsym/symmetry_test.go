// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package satsym

import "testing"

func TestGeneratorIsIdentity(t *testing.T) {
	identity := Generator{LitPermutation: map[int]int{1: 1, 2: 2, -1: -1}}
	if !identity.IsIdentity() {
		t.Error("expected an all-fixed permutation to be an identity")
	}

	swap := Generator{LitPermutation: map[int]int{1: 2, 2: 1}}
	if swap.IsIdentity() {
		t.Error("expected a swap permutation not to be an identity")
	}
}

// TestExtractGeneratorsDropsIdentityAndNonLiteralNodes covers spec §4.7
// step 3: the extracted generator set restricts each automorphism to its
// literal-node support, and drops permutations that reduce to the identity
// once non-literal nodes are stripped out.
func TestExtractGeneratorsDropsIdentityAndNonLiteralNodes(t *testing.T) {
	g := &LabelledGraph{
		LiteralIDs: map[int]string{
			1:  "lit+1",
			-1: "lit-1",
			2:  "lit+2",
			-2: "lit-2",
		},
	}

	perms := []Permutation{
		// A genuine swap of variable 1's and variable 2's literals.
		{
			"lit+1": "lit+2", "lit+2": "lit+1",
			"lit-1": "lit-2", "lit-2": "lit-1",
			"c0": "c0", // non-literal node, must be dropped from the support
		},
		// The identity permutation: every literal fixed, must be dropped.
		{
			"lit+1": "lit+1", "lit-1": "lit-1",
			"lit+2": "lit+2", "lit-2": "lit-2",
		},
	}

	generators := ExtractGenerators(g, perms)
	if len(generators) != 1 {
		t.Fatalf("expected exactly 1 non-identity generator, got %d", len(generators))
	}
	gen := generators[0]
	if gen.LitPermutation[1] != 2 || gen.LitPermutation[2] != 1 {
		t.Errorf("expected the swap generator to map 1<->2, got %v", gen.LitPermutation)
	}
	if _, ok := gen.LitPermutation[0]; ok {
		t.Error("expected the non-literal node to be dropped from the generator's support")
	}
}
