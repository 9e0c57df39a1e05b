package notstruct

// ID is not a struct.
//
//companion:bean
type ID string
