// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

var (
	mapfjvosfBVSΔNsbSCTKUHoowΞΞ   = ord.NewMapSer[string, string](ord.String, ord.String)
	slicelkkdcmjpgAiAywgCvQΣLΔgΞΞ = ord.NewSliceSer[float32](varint.Float32)
)

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var DomainMUS = domainMUS{}

type domainMUS struct{}

func (s domainMUS) Marshal(v Domain, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s domainMUS) Unmarshal(bs []byte) (v Domain, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = Domain(tmp)
	return
}

func (s domainMUS) Size(v Domain) (size int) {
	return ord.String.Size(string(v))
}

func (s domainMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	n += DomainMUS.Marshal(v.Domain, bs[n:])
	n += ord.String.Marshal(v.SourceURI, bs[n:])
	n += varint.Int.Marshal(v.Position, bs[n:])
	n += varint.Uint64.Marshal(v.Sequence, bs[n:])
	n += mapfjvosfBVSΔNsbSCTKUHoowΞΞ.Marshal(v.Metadata, bs[n:])
	return n + slicelkkdcmjpgAiAywgCvQΣLΔgΞΞ.Marshal(v.Vector, bs[n:])
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Domain, n1, err = DomainMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceURI, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Position, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Sequence, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = mapfjvosfBVSΔNsbSCTKUHoowΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = slicelkkdcmjpgAiAywgCvQΣLΔgΞΞ.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Text)
	size += DomainMUS.Size(v.Domain)
	size += ord.String.Size(v.SourceURI)
	size += varint.Int.Size(v.Position)
	size += varint.Uint64.Size(v.Sequence)
	size += mapfjvosfBVSΔNsbSCTKUHoowΞΞ.Size(v.Metadata)
	return size + slicelkkdcmjpgAiAywgCvQΣLΔgΞΞ.Size(v.Vector)
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
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
	n1, err = DomainMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Uint64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = mapfjvosfBVSΔNsbSCTKUHoowΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicelkkdcmjpgAiAywgCvQΣLΔgΞΞ.Skip(bs[n:])
	n += n1
	return
}

var CheckpointMUS = checkpointMUS{}

type checkpointMUS struct{}

func (s checkpointMUS) Marshal(v Checkpoint, bs []byte) (n int) {
	n = DomainMUS.Marshal(v.Domain, bs)
	n += varint.Uint64.Marshal(v.LastSequence, bs[n:])
	return n + varint.Uint64.Marshal(v.Processed, bs[n:])
}

func (s checkpointMUS) Unmarshal(bs []byte) (v Checkpoint, n int, err error) {
	v.Domain, n, err = DomainMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.LastSequence, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Processed, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	return
}

func (s checkpointMUS) Size(v Checkpoint) (size int) {
	size = DomainMUS.Size(v.Domain)
	size += varint.Uint64.Size(v.LastSequence)
	return size + varint.Uint64.Size(v.Processed)
}

func (s checkpointMUS) Skip(bs []byte) (n int, err error) {
	n, err = DomainMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Uint64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Uint64.Skip(bs[n:])
	n += n1
	return
}
