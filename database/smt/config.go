// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package smt

// TreeConfig defines a set of configuration options customizing a tree
// instance. Configurations alter the produced hashes; trees and verifiers
// need to agree on the configuration to interoperate.
type TreeConfig struct {
	// A descriptive name for this configuration. It has no effect except for
	// logging and debugging purposes.
	Name string

	// The algorithm used for hashing nodes.
	Hashing hashAlgorithm
}

var Sha256Config = TreeConfig{
	Name:    "Sha256",
	Hashing: Sha256Hashing,
}

var KeccakConfig = TreeConfig{
	Name:    "Keccak256",
	Hashing: KeccakHashing,
}

var allTreeConfigs = []TreeConfig{
	Sha256Config, KeccakConfig,
}

// GetConfigByName attempts to locate a configuration with the given name.
func GetConfigByName(name string) (TreeConfig, bool) {
	for _, config := range allTreeConfigs {
		if config.Name == name {
			return config, true
		}
	}
	return TreeConfig{}, false
}
