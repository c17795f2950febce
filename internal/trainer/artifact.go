package trainer

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"fjacquet/spendcat/internal/caterror"
	"fjacquet/spendcat/internal/models"

	"github.com/jbrukh/bayesian"
)

// Artifact layout: 4-byte magic, big-endian uint16 format version, gob payload.
const (
	artifactMagic   = "SPCM"
	ArtifactVersion = uint16(1)
	headerSize      = len(artifactMagic) + 2
)

type artifactPayload struct {
	Info    ModelInfo
	Terms   []string
	DocFreq []int
	NumDocs int
	Classes []string
	Exact   map[string]string
	Members [][]byte
}

// EncodeArtifact serializes m.
func EncodeArtifact(m *Model) ([]byte, error) {
	payload := artifactPayload{
		Info:    m.info,
		Terms:   m.vectorizer.terms,
		DocFreq: m.vectorizer.docFreq,
		NumDocs: m.vectorizer.numDocs,
		Classes: make([]string, len(m.ensemble.classes)),
		Exact:   make(map[string]string, len(m.exact)),
		Members: make([][]byte, len(m.ensemble.members)),
	}
	for i, c := range m.ensemble.classes {
		payload.Classes[i] = string(c)
	}
	for text, label := range m.exact {
		payload.Exact[text] = string(label)
	}
	for i, member := range m.ensemble.members {
		var buf bytes.Buffer
		if err := member.WriteTo(&buf); err != nil {
			return nil, fmt.Errorf("error encoding ensemble member %d: %w", i, err)
		}
		payload.Members[i] = buf.Bytes()
	}

	var out bytes.Buffer
	out.WriteString(artifactMagic)
	if err := binary.Write(&out, binary.BigEndian, ArtifactVersion); err != nil {
		return nil, err
	}
	if err := gob.NewEncoder(&out).Encode(&payload); err != nil {
		return nil, fmt.Errorf("error encoding model artifact: %w", err)
	}
	return out.Bytes(), nil
}

// DecodeArtifact restores a model written by EncodeArtifact. Blobs with an
// unknown magic or format version are rejected with ErrIncompatibleArtifact.
func DecodeArtifact(blob []byte) (*Model, error) {
	if len(blob) < headerSize || string(blob[:len(artifactMagic)]) != artifactMagic {
		return nil, fmt.Errorf("%w: missing %s header", caterror.ErrIncompatibleArtifact, artifactMagic)
	}
	version := binary.BigEndian.Uint16(blob[len(artifactMagic):headerSize])
	if version != ArtifactVersion {
		return nil, fmt.Errorf("%w: format version %d, expected %d",
			caterror.ErrIncompatibleArtifact, version, ArtifactVersion)
	}

	var payload artifactPayload
	if err := gob.NewDecoder(bytes.NewReader(blob[headerSize:])).Decode(&payload); err != nil {
		return nil, fmt.Errorf("error decoding model artifact: %w", err)
	}
	if len(payload.Members) == 0 || len(payload.Classes) < 2 {
		return nil, fmt.Errorf("error decoding model artifact: empty ensemble")
	}
	if len(payload.Terms) != len(payload.DocFreq) {
		return nil, fmt.Errorf("error decoding model artifact: vocabulary size mismatch")
	}

	e := &ensemble{
		classes: make([]bayesian.Class, len(payload.Classes)),
		members: make([]*bayesian.Classifier, len(payload.Members)),
	}
	for i, c := range payload.Classes {
		e.classes[i] = bayesian.Class(c)
	}
	for i, raw := range payload.Members {
		member, err := bayesian.NewClassifierFromReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("error decoding ensemble member %d: %w", i, err)
		}
		e.members[i] = member
	}

	exact := make(map[string]models.CategoryLabel, len(payload.Exact))
	for text, label := range payload.Exact {
		exact[text] = models.CategoryLabel(label)
	}

	return &Model{
		info:       payload.Info,
		vectorizer: newVectorizer(payload.Terms, payload.DocFreq, payload.NumDocs, payload.Info.NgramMax),
		ensemble:   e,
		exact:      exact,
	}, nil
}
