package builder

import "github.com/syssam/companion/decl"

// CodecPackage is the import path of the serialization runtime.
const CodecPackage = "github.com/syssam/companion/codec"

// Library describes the serialization runtime an adapter is generated
// against.
type Library struct {
	// WriterBase and ReaderBase are the generic base types the nested
	// writer and reader extend. They are instantiated with the immutable
	// type and constructed with its class literal.
	WriterBase decl.TypeRef
	ReaderBase decl.TypeRef
	// Writer and Reader are the generic interfaces they implement.
	Writer decl.TypeRef
	Reader decl.TypeRef

	Generator decl.TypeRef
	Parser    decl.TypeRef
	Provider  decl.TypeRef
	Context   decl.TypeRef

	IOError         decl.TypeRef
	GenerationError decl.TypeRef
	ProcessingError decl.TypeRef

	// Serialize and Deserialize are the annotations binding the adapters
	// to the immutable type. Their "using" member names the adapter.
	Serialize   decl.TypeRef
	Deserialize decl.TypeRef

	WriteMethod string // writer method implemented by the adapter
	ReadMethod  string // reader method implemented by the adapter
	WriteObject string // generator method encoding a value
	ReadValueAs string // parser method materializing a value
}

// CodecLibrary returns the Library of package codec.
func CodecLibrary() Library {
	ref := func(name string) decl.TypeRef { return decl.Ref(CodecPackage, name) }
	return Library{
		WriterBase:      ref("ValueWriter"),
		ReaderBase:      ref("ValueReader"),
		Writer:          ref("Writer"),
		Reader:          ref("Reader"),
		Generator:       ref("Generator"),
		Parser:          ref("Parser"),
		Provider:        ref("Provider"),
		Context:         ref("Context"),
		IOError:         ref("IOError"),
		GenerationError: ref("GenerationError"),
		ProcessingError: ref("ProcessingError"),
		Serialize:       ref("Serialize"),
		Deserialize:     ref("Deserialize"),
		WriteMethod:     "write",
		ReadMethod:      "read",
		WriteObject:     "writeObject",
		ReadValueAs:     "readValueAs",
	}
}
