// Package serialization saves and loads trained sequential models.
//
// Two file formats are supported, chosen by file extension:
//
//	.nn binary format (all integers big-endian):
//	  [4 bytes:  Magic "SQNN"]
//	  [4 bytes:  Version (uint32)]
//	  [16 bytes: Model ID (UUID)]
//	  [string:   Loss name]
//	  [int32 + int32 dims: Input shape]
//	  [int32:    Layer count, then one encoded LayerSpec per layer]
//	  [int32:    Parameter count, then per parameter: name string + tensor]
//	  [32 bytes: SHA-256 of everything above]
//
//	.yaml / .yml: the same document as human-readable YAML.
//
// A string is an int32 byte length followed by the bytes. A tensor is written by WriteTensor:
// an int32 rank, one int32 per dimension, then the elements as float64 in logical order.
//
// Example usage:
//
//	if err := serialization.SaveModel("xor.nn", m); err != nil {
//	    log.Fatal(err)
//	}
//
//	m, info, err := serialization.LoadModel("xor.nn")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.ModelID)
package serialization
