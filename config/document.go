package config

import (
	"fmt"

	"github.com/pelletier/go-toml"
	"tlog.app/go/errors"
)

// Document is the on-disk TOML shape of a ConfigStore, per spec.md
// §6. It round-trips through Marshal/Unmarshal; Snapshot renders a
// live Store into it. No function here rebuilds a Store from a
// Document.
type Document struct {
	Globals   []tomlGlobal   `toml:"globals"`
	StackVars []tomlStackVar `toml:"stack-vars"`
	Functions []tomlFunction `toml:"functions"`
}

type tomlGlobal struct {
	Address      string `toml:"address"`
	Name         string `toml:"name"`
	Storage      string `toml:"storage"`
	TypeIR       string `toml:"type-llvm-ir"`
	Crypto       string `toml:"crypto-description,omitempty"`
	IsFromDebug  bool   `toml:"is-from-debug"`
	IsWideString bool   `toml:"is-wide-string"`
}

type tomlStackVar struct {
	Function string `toml:"function"`
	Offset   int64  `toml:"offset"`
	Name     string `toml:"name"`
	TypeIR   string `toml:"type-llvm-ir"`
}

type tomlFunction struct {
	Address           string   `toml:"address,omitempty"`
	Name              string   `toml:"name"`
	CallingConvention string   `toml:"calling-convention"`
	Params            []string `toml:"params,omitempty"`
}

// Marshal serializes doc to TOML text.
func Marshal(doc *Document) ([]byte, error) {
	b, err := toml.Marshal(*doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshal config document")
	}
	return b, nil
}

// Unmarshal parses TOML text into a Document.
func Unmarshal(data []byte) (*Document, error) {
	doc := &Document{}
	if err := toml.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrap(err, "unmarshal config document")
	}
	return doc, nil
}

// Snapshot renders the live Store into a Document suitable for
// persisting to disk. Iterates byStorage, not byHandle, so config-only
// entries with no IR handle (e.g. an unreadable initializer, kept per
// spec.md:145) are included in the dump.
func Snapshot(s *Store) *Document {
	doc := &Document{}
	for _, obj := range s.byStorage {
		switch obj.Storage.Kind {
		case StorageGlobal:
			doc.Globals = append(doc.Globals, tomlGlobal{
				Address:      fmt.Sprintf("0x%x", obj.Storage.Addr),
				Name:         obj.Name,
				Storage:      "global",
				TypeIR:       obj.TypeIR,
				Crypto:       obj.CryptoDescription,
				IsFromDebug:  obj.IsFromDebug,
				IsWideString: obj.IsWideString,
			})
		case StorageStack:
			doc.StackVars = append(doc.StackVars, tomlStackVar{
				Function: obj.Storage.Func,
				Offset:   obj.Storage.Offset,
				Name:     obj.Name,
				TypeIR:   obj.TypeIR,
			})
		}
	}
	for name, f := range s.funcs {
		tf := tomlFunction{Name: name, CallingConvention: f.CallingConvention}
		if f.Addr != nil {
			tf.Address = fmt.Sprintf("0x%x", *f.Addr)
		}
		for _, p := range f.Params {
			tf.Params = append(tf.Params, p.key())
		}
		doc.Functions = append(doc.Functions, tf)
	}
	return doc
}
