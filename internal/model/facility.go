package model

// Facility represents a bookable court or room of the sports complex.
// Identifiers are never reused and the canonical name keeps its original
// casing; matching against user input is case-insensitive.  This struct
// corresponds to a row in the `facilities` table.
//
// Fields:
//  ID   – primary key identifier.
//  Name – unique canonical facility name.
type Facility struct {
    ID   uint64 // facilities.id
    Name string // facilities.name
}
