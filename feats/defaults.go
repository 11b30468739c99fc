// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package feats

import (
	"github.com/czcorpus/kddclf/recode"
	"github.com/czcorpus/kddclf/records"
)

func binaryZero(src string) recode.BinaryRule {
	return recode.BinaryRule{
		Source:        src,
		Output:        src + "_bin",
		Threshold:     recode.DefaultBinaryThreshold,
		Dominant:      "0",
		MinorityLabel: recode.DefaultMinorityLabel,
	}
}

func band(src string, boundary float64) recode.BandRule {
	return recode.BandRule{
		Source:   src,
		Output:   src + "_cat",
		Boundary: boundary,
		Labels:   recode.DefaultBandLabels,
	}
}

// DefaultRules is the feature configuration of the KDD models.
func DefaultRules() Rules {
	return Rules{
		Numeric: []string{
			"duration",
			"src_bytes",
			"dst_bytes",
			"logged_in",
			"count",
			"srv_count",
			"serror_rate",
			"srv_serror_rate",
			"rerror_rate",
			"srv_rerror_rate",
			"same_srv_rate",
			"diff_srv_rate",
			"srv_diff_host_rate",
			"dst_host_count",
			"dst_host_srv_count",
			"dst_host_same_srv_rate",
			"dst_host_diff_srv_rate",
			"dst_host_same_src_port_rate",
			"dst_host_srv_diff_host_rate",
			"dst_host_serror_rate",
			"dst_host_srv_serror_rate",
			"dst_host_rerror_rate",
			"dst_host_srv_rerror_rate",
		},
		Categorical: []string{
			records.ColProtocolType,
			records.ColService,
			records.ColFlag,
		},
		Binary: []recode.BinaryRule{
			binaryZero("land"),
			binaryZero("wrong_fragment"),
			binaryZero("urgent"),
			binaryZero("num_failed_logins"),
			binaryZero("root_shell"),
			binaryZero("su_attempted"),
			binaryZero("num_shells"),
			binaryZero("num_access_files"),
			binaryZero("num_outbound_cmds"),
			binaryZero("is_host_login"),
			binaryZero("is_guest_login"),
		},
		Band: []recode.BandRule{
			band("hot", 5),
			band("num_compromised", 10),
			band("num_root", 10),
			band("num_file_creations", 5),
		},
	}
}
