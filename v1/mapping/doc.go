// Package mapping turns flat keyed sources into typed settings objects.
//
// A Schema lists the properties of a settings type explicitly. An ObjectMapper
// reads every listed property from a source under an optional key prefix and
// returns a new value with those properties set; properties missing from the
// source keep their zero value.
//
// Two mappers are provided. ConverterMapper compiles each schema once into a
// Converter and caches it per type. BindingMapper binds the collected values
// with mapstructure and relies on field names matching property names.
package mapping
