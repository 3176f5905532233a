// Copyright 2025 Poiesic Systems
//
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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/mealsync/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// importRecordSize returns the encoded size of record.
// Layout: DocumentID, Fingerprint, Success, Stage, Error, ImportedAt (unix micros).
func importRecordSize(record *core.ImportRecord) int {
	return ord.String.Size(record.DocumentID) +
		varint.Uint64.Size(uint64(record.Fingerprint)) +
		ord.Bool.Size(record.Success) +
		ord.String.Size(string(record.Stage)) +
		ord.String.Size(record.Error) +
		varint.Int64.Size(record.ImportedAt.UnixMicro())
}

// MarshalImportRecord serializes an ImportRecord to bytes.
func MarshalImportRecord(record *core.ImportRecord) []byte {
	buf := make([]byte, importRecordSize(record))
	n := ord.String.Marshal(record.DocumentID, buf)
	n += varint.Uint64.Marshal(uint64(record.Fingerprint), buf[n:])
	n += ord.Bool.Marshal(record.Success, buf[n:])
	n += ord.String.Marshal(string(record.Stage), buf[n:])
	n += ord.String.Marshal(record.Error, buf[n:])
	varint.Int64.Marshal(record.ImportedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalImportRecord deserializes an ImportRecord from bytes.
func UnmarshalImportRecord(data []byte) (*core.ImportRecord, error) {
	var (
		record core.ImportRecord
		n, m   int
		err    error
	)
	wrap := func(field string, err error) error {
		return fmt.Errorf("%w: import record %s: %w", ErrSerializationFailed, field, err)
	}

	if record.DocumentID, m, err = ord.String.Unmarshal(data); err != nil {
		return nil, wrap("document id", err)
	}
	n += m

	var fingerprint uint64
	if fingerprint, m, err = varint.Uint64.Unmarshal(data[n:]); err != nil {
		return nil, wrap("fingerprint", err)
	}
	record.Fingerprint = core.ID(fingerprint)
	n += m

	if record.Success, m, err = ord.Bool.Unmarshal(data[n:]); err != nil {
		return nil, wrap("success", err)
	}
	n += m

	var stage string
	if stage, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, wrap("stage", err)
	}
	record.Stage = core.Stage(stage)
	n += m

	if record.Error, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, wrap("error", err)
	}
	n += m

	var micros int64
	if micros, m, err = varint.Int64.Unmarshal(data[n:]); err != nil {
		return nil, wrap("imported at", err)
	}
	n += m
	record.ImportedAt = time.UnixMicro(micros).UTC()

	if n != len(data) {
		return nil, fmt.Errorf("%w: import record has %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return &record, nil
}
