/*
Package mapping implements the attribute mapping between record attributes
and RDF terms.

A mapping is read from a YAML document with one entry per attribute:

	name:
	  entity: name
	  predicate: slipo:name
	  language: en

Each entry gets a Profile that decides which triples the transformation
emits for the attribute. Entries can also declare generated attributes
(generateWith), computed either from other attributes or from the geometry
of the record (generateWith: geometry.getArea()).

Keys ending with %LANG match a family of attributes with a language suffix
(name_%LANG matches name_en, name_de). Keys with a * match attributes with
the same prefix and suffix. The key _ is the catch-all for attributes
without any other mapping.
*/
package mapping
