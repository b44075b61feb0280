package registry

import (
	"strings"
)

// Fixed column names in export order.
const (
	ColNIPT         = "nipt"
	ColName         = "name"
	ColTradeName    = "trade_name"
	ColSector       = "sector"
	ColOwners       = "owners"
	ColLegalForm    = "legal_form"
	ColStatus       = "status"
	ColCity         = "city"
	ColCitizenship  = "citizenship"
	ColRegisteredAt = "registered_at"
	ColKeyword      = "keyword"
	ColError        = "error"
	ColEmail        = "email"
	ColPhone        = "telefon"
)

// FixedColumns is the normalized schema, in order, without keyword.
var FixedColumns = []string{
	ColNIPT, ColName, ColTradeName, ColSector, ColOwners,
	ColLegalForm, ColStatus, ColCity, ColCitizenship, ColRegisteredAt,
}

// DateLayout is the layout used when writing registered_at.
const DateLayout = "2006-01-02"

// OwnersSeparator joins owners in flat exports.
const OwnersSeparator = "; "

// Columns returns the header for rs: the fixed schema, keyword, error when
// any search failed and the contact columns when contacts were fetched.
func (rs ResultSet) Columns() []string {
	cols := make([]string, 0, len(FixedColumns)+4)
	cols = append(cols, FixedColumns...)
	cols = append(cols, ColKeyword)
	if rs.HasErrors() {
		cols = append(cols, ColError)
	}
	if rs.Contacts {
		cols = append(cols, ColEmail, ColPhone)
	}
	return cols
}

// Value renders one column of r as flat text. Nil values render as "".
func (r Row) Value(col string) string {
	switch col {
	case ColNIPT:
		return Str(r.NIPT)
	case ColName:
		return Str(r.Name)
	case ColTradeName:
		return Str(r.TradeName)
	case ColSector:
		return Str(r.Sector)
	case ColOwners:
		return strings.Join(r.Owners, OwnersSeparator)
	case ColLegalForm:
		return Str(r.LegalForm)
	case ColStatus:
		return Str(r.Status)
	case ColCity:
		return Str(r.City)
	case ColCitizenship:
		return Str(r.Citizenship)
	case ColRegisteredAt:
		if r.RegisteredAt == nil {
			return ""
		}
		return r.RegisteredAt.Format(DateLayout)
	case ColKeyword:
		return r.Keyword
	case ColError:
		return r.Error
	case ColEmail:
		return Str(r.Contact.Email)
	case ColPhone:
		return Str(r.Contact.Phone)
	}
	return ""
}

// Record renders r for the given header.
func (r Row) Record(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = r.Value(c)
	}
	return out
}
