package protocol

// InfoKind tags every message kind the server may send or the client
// may request a response for. It is the key used by the request
// router (see package router), so it must be a comparable, hashable
// value — a plain struct of two strings satisfies that without an
// interface or reflection.
//
// The catch-all Raw variant carries whatever event name the server
// sent that the codec doesn't have a named kind for, so unknown
// traffic still routes somewhere instead of being silently dropped.
type InfoKind struct {
	name string
	raw  string
}

func (k InfoKind) String() string {
	if k.name == rawKindName {
		return k.raw
	}
	return wireNames[k.name]
}

// IsRaw reports whether this kind is the Raw(name) catch-all.
func (k InfoKind) IsRaw() bool { return k.name == rawKindName }

const rawKindName = "Raw"

var (
	InfoOpenOrder         = InfoKind{name: "OpenOrder"}
	InfoUpdateStream      = InfoKind{name: "UpdateStream"}
	InfoUpdateHistoryNew  = InfoKind{name: "UpdateHistoryNew"}
	InfoUpdateAssets      = InfoKind{name: "UpdateAssets"}
	InfoUpdateBalance     = InfoKind{name: "UpdateBalance"}
	InfoSuccesscloseOrder = InfoKind{name: "SuccesscloseOrder"}
	InfoSuccessopenOrder  = InfoKind{name: "SuccessopenOrder"}
	InfoSuccessAuth       = InfoKind{name: "SuccessAuth"}
	InfoChangeSymbol      = InfoKind{name: "ChangeSymbol"}
	InfoSubscribeSymbol   = InfoKind{name: "SubscribeSymbol"}
	InfoLoadHistoryPeriod = InfoKind{name: "LoadHistoryPeriod"}
	InfoFailOpenOrder     = InfoKind{name: "FailOpenOrder"}
	InfoUpdateOpenedDeals = InfoKind{name: "UpdateOpenedDeals"}
	InfoUpdateClosedDeals = InfoKind{name: "UpdateClosedDeals"}
	InfoGetCandles        = InfoKind{name: "GetCandles"}

	// Reserved: observed in the info enumeration with no-op bodies in
	// the upstream source; treated as reserved until observed on the
	// wire in a shape worth decoding.
	InfoUpdateCharts         = InfoKind{name: "UpdateCharts"}
	InfoSuccessupdatePending = InfoKind{name: "SuccessupdatePending"}
)

// RawInfo builds a catch-all InfoKind for an event name the codec
// doesn't recognize.
func RawInfo(name string) InfoKind {
	return InfoKind{name: rawKindName, raw: name}
}

// wireNames maps every named kind to its camelCase wire event name;
// info is always serialised in camelCase on the wire per spec.
var wireNames = map[string]string{
	"OpenOrder":            "openOrder",
	"UpdateStream":         "updateStream",
	"UpdateHistoryNew":     "updateHistoryNew",
	"UpdateAssets":         "updateAssets",
	"UpdateBalance":        "updateBalance",
	"SuccesscloseOrder":    "successcloseOrder",
	"SuccessopenOrder":     "successopenOrder",
	"SuccessAuth":          "successauth",
	"ChangeSymbol":         "changeSymbol",
	"SubscribeSymbol":      "subscribeSymbol",
	"LoadHistoryPeriod":    "loadHistoryPeriod",
	"FailOpenOrder":        "failOpenOrder",
	"UpdateOpenedDeals":    "updateOpenedDeals",
	"UpdateClosedDeals":    "updateClosedDeals",
	"GetCandles":           "getCandles",
	"UpdateCharts":         "updateCharts",
	"SuccessupdatePending": "successupdatePending",
}
