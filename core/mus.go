package core

// Hand-written MUS serializers for the types persisted by the vector index.
// The record graph is small enough that generated code is not worth carrying.

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

type idMUS struct{}

// IDMUS serializes IDs as varint-encoded uint64 values.
var IDMUS = idMUS{}

var _ mus.Serializer[ID] = IDMUS

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) (size int) {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type corpusEntryMUS struct{}

// CorpusEntryMUS serializes CorpusEntry values field by field.
var CorpusEntryMUS = corpusEntryMUS{}

var _ mus.Serializer[CorpusEntry] = CorpusEntryMUS

func (corpusEntryMUS) Marshal(e CorpusEntry, bs []byte) (n int) {
	n = IDMUS.Marshal(e.Id, bs)
	n += ord.String.Marshal(e.Label, bs[n:])
	n += ord.String.Marshal(e.Code, bs[n:])
	n += vectorMUS.Marshal(e.Vector, bs[n:])
	return n
}

func (corpusEntryMUS) Unmarshal(bs []byte) (e CorpusEntry, n int, err error) {
	e.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	e.Label, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Code, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (corpusEntryMUS) Size(e CorpusEntry) (size int) {
	size = IDMUS.Size(e.Id)
	size += ord.String.Size(e.Label)
	size += ord.String.Size(e.Code)
	size += vectorMUS.Size(e.Vector)
	return size
}

func (corpusEntryMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = vectorMUS.Skip(bs[n:])
	n += n1
	return
}
