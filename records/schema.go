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

package records

const (
	ColProtocolType = "protocol_type"
	ColService      = "service"
	ColFlag         = "flag"
	ColAttack       = "attack"
	ColLevel        = "level"

	// NumColumns is the number of fields of every input record
	NumColumns = 43
)

// Schema lists the KDD connection record columns in the order
// in which they appear in an input file.
var Schema = [NumColumns]string{
	"duration",
	ColProtocolType,
	ColService,
	ColFlag,
	"src_bytes",
	"dst_bytes",
	"land",
	"wrong_fragment",
	"urgent",
	"hot",
	"num_failed_logins",
	"logged_in",
	"num_compromised",
	"root_shell",
	"su_attempted",
	"num_root",
	"num_file_creations",
	"num_shells",
	"num_access_files",
	"num_outbound_cmds",
	"is_host_login",
	"is_guest_login",
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
	ColAttack,
	ColLevel,
}

// textColumns are the only non-numeric columns of the schema
var textColumns = map[string]bool{
	ColProtocolType: true,
	ColService:      true,
	ColFlag:         true,
	ColAttack:       true,
}

// IsTextColumn tells whether a schema column holds strings
// rather than numbers.
func IsTextColumn(name string) bool {
	return textColumns[name]
}

// SchemaIndex returns position of a column within Schema
// or -1 if there is no such column.
func SchemaIndex(name string) int {
	for i, v := range Schema {
		if v == name {
			return i
		}
	}
	return -1
}
