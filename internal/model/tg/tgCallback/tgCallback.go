package tgCallback

// Callback button tags
const (
	MainMenu     string = "main_menu"
	Back         string = "back"
	BuyLira      string = "buy_lira"
	SellLira     string = "sell_lira"
	Simulation   string = "simulation"
	CheckStock   string = "check_stock"
	ContactAdmin string = "contact_admin"

	ConfirmTransaction string = "confirm_transaction"
	PaymentSent        string = "payment_sent"
	SellSent           string = "sell_sent"

	// operator only
	UpdateStock  string = "update_stock"
	UpdateRupiah string = "update_rupiah"
	UpdateLira   string = "update_lira"
	ExportReport string = "export_report"
)
