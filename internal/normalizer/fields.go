package normalizer

import "strings"

// Field is a canonical record field resolved from a table header
type Field string

const (
	FieldDate           Field = "date"
	FieldPeriod         Field = "period"
	FieldDocumentType   Field = "document_type"
	FieldHub            Field = "hub"
	FieldPartner        Field = "partner"
	FieldName           Field = "name"
	FieldDirection      Field = "direction"
	FieldDocuments      Field = "documents"
	FieldKilocharacters Field = "kilocharacters"
	FieldCharge         Field = "charge"

	FieldID          Field = "id"
	FieldRegion      Field = "region"
	FieldMethod      Field = "method"
	FieldVolume      Field = "volume"
	FieldSenderID    Field = "sender_id"
	FieldReceiverID  Field = "receiver_id"
	FieldMapName     Field = "map_name"
	FieldReportOwner Field = "report_partner"
)

// fieldAliases lists accepted header spellings per field, most specific first
var fieldAliases = map[Field][]string{
	FieldDate:           {"Date", "Day", "Transaction Date", "Process Date", "Processed Date"},
	FieldPeriod:         {"Period", "Month", "Billing Period", "Billing Month", "YYYYMM"},
	FieldDocumentType:   {"Document Type", "Doc Type", "DocType", "Transaction Set", "Transaction Type", "Document", "Doc"},
	FieldHub:            {"Hub ID", "HubID", "Hub Code", "Hub"},
	FieldPartner:        {"TP ID", "Trading Partner ID", "Partner ID", "TPID", "Trading Partner", "Partner", "TP"},
	FieldName:           {"Name", "Hub Name", "Partner Name", "TP Name", "Trading Partner Name", "Document Name", "Description"},
	FieldDirection:      {"Direction", "In/Out", "Inbound/Outbound", "Flow"},
	FieldDocuments:      {"Documents", "Document Count", "Doc Count", "Docs", "Total Documents", "# Documents", "Transactions", "Count"},
	FieldKilocharacters: {"Kilocharacters", "KC", "KCs", "Kilo Characters", "Kilochars", "Total KC", "KC Count"},
	FieldCharge:         {"Charge", "Charges", "Total Charge", "Amount", "Cost", "Billing Amount", "Fee"},

	FieldID:          {"ID", "Partner ID", "TP ID", "Hub ID", "Code", "Identifier"},
	FieldRegion:      {"Region", "Location", "Territory"},
	FieldMethod:      {"Method", "Communication Method", "Connection Method", "Connection Type", "Protocol"},
	FieldVolume:      {"Volume", "Documents", "Document Count", "Count", "Total"},
	FieldSenderID:    {"Sender ID", "SenderID", "ISA Sender ID", "ISA Sender", "Sender"},
	FieldReceiverID:  {"Receiver ID", "ReceiverID", "ISA Receiver ID", "ISA Receiver", "Receiver"},
	FieldMapName:     {"Map Name", "MapName", "Map"},
	FieldReportOwner: {"Trading Partner", "Partner", "TP", "Partner ID", "TP ID", "Partner Name"},
}

// columns maps resolved fields to header positions
type columns map[Field]int

func (c columns) has(f Field) bool {
	_, ok := c[f]
	return ok
}

// resolveColumns binds each field to one header position. Fields are resolved
// in the given order, a column is bound at most once, and for every field an
// exact spelling wins over a case-insensitive one.
func resolveColumns(header []string, fields ...Field) columns {
	resolved := make(columns, len(fields))
	used := make(map[int]bool, len(header))

	for _, f := range fields {
		if idx, ok := matchHeader(header, fieldAliases[f], used); ok {
			resolved[f] = idx
			used[idx] = true
		}
	}
	return resolved
}

func matchHeader(header, aliases []string, used map[int]bool) (int, bool) {
	for _, alias := range aliases {
		for i, h := range header {
			if !used[i] && h == alias {
				return i, true
			}
		}
	}
	for _, alias := range aliases {
		for i, h := range header {
			if !used[i] && strings.EqualFold(strings.TrimSpace(h), alias) {
				return i, true
			}
		}
	}
	return -1, false
}
