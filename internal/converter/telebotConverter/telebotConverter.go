package telebotConverter

import (
	"fmt"
	"strings"
	"time"

	"github.com/lirakuid/liraku_bot/config"
	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/lirakuid/liraku_bot/internal/model/tg/tgCallback"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const dateTimeLayout = "02/01/2006 15:04:05"

func MainMenu(isOwner bool) (string, *tele.ReplyMarkup) {
	markup := &tele.ReplyMarkup{}

	rows := []tele.Row{
		markup.Row(markup.Data("💸 Beli Lira", tgCallback.BuyLira)),
		markup.Row(markup.Data("💵 Jual Lira", tgCallback.SellLira)),
		markup.Row(markup.Data("💱 Lihat Simulasi Kurs", tgCallback.Simulation)),
		markup.Row(markup.Data("📊 Cek Stok", tgCallback.CheckStock)),
	}

	if isOwner {
		rows = append(rows,
			markup.Row(markup.Data("⚙️ Update Stok", tgCallback.UpdateStock)),
			markup.Row(markup.Data("📑 Laporan Transaksi", tgCallback.ExportReport)),
		)
	}

	rows = append(rows, markup.Row(markup.Data("👤 Kontak Admin", tgCallback.ContactAdmin)))
	markup.Inline(rows...)

	text := "💚 Selamat datang di LiraKuBot!\n\n" +
		"✅ Proses cepat & aman\n" +
		"✅ Langsung kirim ke IBAN\n" +
		"✅ Lebih hemat dibanding beli di bandara & bank\n\n" +
		"Silakan pilih menu:"

	return text, markup
}

func BackMenuMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("🔙 Kembali", tgCallback.Back)),
		markup.Row(markup.Data("🏠 Menu Utama", tgCallback.MainMenu)),
	)
	return markup
}

func ConfirmationMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("✅ Data Sudah Benar", tgCallback.ConfirmTransaction)),
		markup.Row(markup.Data("🔙 Kembali", tgCallback.Back)),
		markup.Row(markup.Data("🏠 Menu Utama", tgCallback.MainMenu)),
	)
	return markup
}

func PaymentMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("✅ Saya sudah bayar", tgCallback.PaymentSent)),
		markup.Row(markup.Data("🔙 Kembali", tgCallback.Back)),
		markup.Row(markup.Data("🏠 Menu Utama", tgCallback.MainMenu)),
	)
	return markup
}

func SellSentMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("✅ Saya sudah kirim", tgCallback.SellSent)),
		markup.Row(markup.Data("🔙 Kembali", tgCallback.Back)),
		markup.Row(markup.Data("🏠 Menu Utama", tgCallback.MainMenu)),
	)
	return markup
}

func StockUpdateMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("💰 Update Stok Rupiah", tgCallback.UpdateRupiah)),
		markup.Row(markup.Data("🇹🇷 Update Stok Lira", tgCallback.UpdateLira)),
		markup.Row(markup.Data("🔙 Kembali", tgCallback.MainMenu)),
	)
	return markup
}

// BuyAmountPrompt renders the amount step. The stock line shows the
// margin-quoted TRY equivalent when a rate was available.
func BuyAmountPrompt(availability decimal.Decimal, equivalentTRY *decimal.Decimal) (string, *tele.ReplyMarkup) {
	var sb strings.Builder
	sb.WriteString("💸 Beli Lira (IDR ke TRY)\n\n")
	sb.WriteString("Masukkan nominal dalam Rupiah yang ingin dikonversi ke Lira Turki.\n")
	sb.WriteString("Minimal pembelian: Rp100.000\n")
	sb.WriteString(fmt.Sprintf("📊 Stok tersedia: %s", FormatIDR(availability)))
	if equivalentTRY != nil {
		sb.WriteString(fmt.Sprintf(" (≈ %s)", FormatTRY(*equivalentTRY)))
	}
	sb.WriteString("\n\nContoh: 500000")

	return sb.String(), BackMenuMarkup()
}

func SellAmountPrompt(availability decimal.Decimal) (string, *tele.ReplyMarkup) {
	text := "💵 Jual Lira (TRY ke IDR)\n\n" +
		"Masukkan jumlah Lira Turki yang ingin dijual.\n" +
		fmt.Sprintf("📊 Stok Lira tersedia: %s\n\n", FormatTRY(availability)) +
		"Contoh: 100"

	return text, BackMenuMarkup()
}

// BuyEstimate shows the quote and asks for the name. The raw rate and the
// margin stay hidden.
func BuyEstimate(chatSession model.Session) (string, *tele.ReplyMarkup) {
	text := "💰 Estimasi Konversi\n\n" +
		fmt.Sprintf("💸 Nominal: %s\n", FormatIDR(chatSession.Amount)) +
		fmt.Sprintf("🇹🇷 Estimasi TRY: %s\n\n", FormatTRY(chatSession.QuotedAmount)) +
		"Masukkan nama lengkap sesuai IBAN Anda:"

	return text, BackMenuMarkup()
}

func SellEstimate(chatSession model.Session) (string, *tele.ReplyMarkup) {
	text := "💰 Estimasi Konversi\n\n" +
		fmt.Sprintf("🇹🇷 Lira: %s\n", FormatTRY(chatSession.Amount)) +
		fmt.Sprintf("💵 Estimasi IDR: %s\n\n", FormatIDR(chatSession.QuotedAmount)) +
		"Masukkan nama lengkap Anda:"

	return text, BackMenuMarkup()
}

func BuyIbanPrompt(name string) (string, *tele.ReplyMarkup) {
	text := fmt.Sprintf("👤 Nama: %s\n\n", name) +
		"Masukkan IBAN Turki Anda (format: TR + 24 angka)\n" +
		"Contoh: TR123456789012345678901234"

	return text, BackMenuMarkup()
}

func SellAccountPrompt(name string) (string, *tele.ReplyMarkup) {
	text := fmt.Sprintf("👤 Nama: %s\n\n", name) +
		"Masukkan nomor rekening bank Indonesia Anda.\n" +
		"Format: [Nama Bank] - [Nomor Rekening]\n" +
		"Contoh: BCA - 1234567890"

	return text, BackMenuMarkup()
}

func BuyConfirmation(chatSession model.Session) (string, *tele.ReplyMarkup) {
	text := "📋 Konfirmasi Detail Pembelian\n\n" +
		fmt.Sprintf("👤 Nama: %s\n", chatSession.Name) +
		fmt.Sprintf("🏦 IBAN: %s\n", chatSession.Destination) +
		fmt.Sprintf("💸 Total pembayaran: %s\n", FormatIDR(chatSession.Amount)) +
		fmt.Sprintf("🇹🇷 TRY yang diterima: %s\n\n", FormatTRY(chatSession.QuotedAmount)) +
		"Apakah data sudah benar?"

	return text, ConfirmationMarkup()
}

func SellConfirmation(chatSession model.Session) (string, *tele.ReplyMarkup) {
	text := "📋 Konfirmasi Detail Penjualan\n\n" +
		fmt.Sprintf("👤 Nama: %s\n", chatSession.Name) +
		fmt.Sprintf("🏦 Rekening: %s\n", chatSession.Destination) +
		fmt.Sprintf("🪙 TRY yang dikirim: %s\n", FormatTRY(chatSession.Amount)) +
		fmt.Sprintf("💰 IDR yang diterima: %s\n\n", FormatIDR(chatSession.QuotedAmount)) +
		"Apakah data sudah benar?"

	return text, ConfirmationMarkup()
}

// BuyPaymentInstructions renders the transfer instruction; stock is not yet
// mutated at this step.
func BuyPaymentInstructions(chatSession model.Session, payment config.Exchange) (string, *tele.ReplyMarkup) {
	text := "💳 Detail Pembayaran\n\n" +
		fmt.Sprintf("👤 Nama: %s\n", chatSession.Name) +
		fmt.Sprintf("🏦 IBAN: %s\n", chatSession.Destination) +
		fmt.Sprintf("🇹🇷 TRY yang diterima: %s\n", FormatTRY(chatSession.QuotedAmount)) +
		fmt.Sprintf("💰 Total pembayaran: %s\n\n", FormatIDR(chatSession.Amount)) +
		"💳 Transfer ke:\n" +
		fmt.Sprintf("🏦 Bank: %s\n", payment.PaymentBank) +
		fmt.Sprintf("💳 Rekening: %s\n", payment.PaymentAccount) +
		fmt.Sprintf("👤 a.n. %s\n\n", payment.PaymentHolder) +
		"Setelah transfer, klik tombol di bawah:"

	return text, PaymentMarkup()
}

func SellTransferInstructions(chatSession model.Session, adminIban string) (string, *tele.ReplyMarkup) {
	text := "💸 Detail Transfer Lira\n\n" +
		fmt.Sprintf("👤 Nama: %s\n", chatSession.Name) +
		fmt.Sprintf("🏦 Rekening Anda: %s\n", chatSession.Destination) +
		fmt.Sprintf("🪙 TRY yang dikirim: %s\n", FormatTRY(chatSession.Amount)) +
		fmt.Sprintf("💰 IDR yang diterima: %s\n\n", FormatIDR(chatSession.QuotedAmount)) +
		"🏦 Kirim Lira ke IBAN Admin:\n" +
		fmt.Sprintf("%s\n\n", adminIban) +
		"Setelah mengirim, klik tombol di bawah:"

	return text, SellSentMarkup()
}

func BuyCompleted(trx model.Transaction, payment config.Exchange) (string, *tele.ReplyMarkup) {
	text := "✅ Konfirmasi Pembayaran Diterima!\n\n" +
		"Terima kasih! Transaksi Anda sedang diproses.\n" +
		"Admin akan segera memverifikasi pembayaran dan mengirim Lira ke IBAN Anda.\n\n" +
		"🏦 Detail Transfer Anda:\n" +
		fmt.Sprintf("💳 Rekening: %s (%s)\n", payment.PaymentAccount, payment.PaymentBank) +
		fmt.Sprintf("👤 a.n. %s\n", payment.PaymentHolder) +
		fmt.Sprintf("💰 Jumlah: %s\n\n", FormatIDR(trx.AmountIDR)) +
		fmt.Sprintf("🇹🇷 IBAN Tujuan: %s\n", trx.Destination) +
		fmt.Sprintf("₺ TRY yang akan diterima: %s\n\n", FormatTRY(trx.AmountTRY)) +
		"📱 Estimasi Waktu Proses: 5-15 menit\n" +
		fmt.Sprintf("💬 Jika ada pertanyaan: %s\n\n", payment.AdminContact) +
		"Kami akan mengirim notifikasi setelah transfer selesai."

	return text, BackMenuMarkup()
}

func SellCompleted(trx model.Transaction, payment config.Exchange) (string, *tele.ReplyMarkup) {
	text := "✅ Konfirmasi Pengiriman Diterima!\n\n" +
		"Terima kasih! Transaksi Anda sedang diproses.\n" +
		"Admin akan segera memverifikasi penerimaan Lira dan mengirim Rupiah ke rekening Anda.\n\n" +
		"🏦 IBAN Admin (tujuan kirim Lira):\n" +
		fmt.Sprintf("%s\n", payment.AdminIban) +
		fmt.Sprintf("🪙 TRY yang Anda kirim: %s\n\n", FormatTRY(trx.AmountTRY)) +
		"🏦 Rekening Anda (tujuan IDR):\n" +
		fmt.Sprintf("%s\n", trx.Destination) +
		fmt.Sprintf("💰 IDR yang akan diterima: %s\n\n", FormatIDR(trx.AmountIDR)) +
		"📱 Estimasi Waktu Proses: 5-15 menit\n" +
		fmt.Sprintf("💬 Jika ada pertanyaan: %s\n\n", payment.AdminContact) +
		"Kami akan mengirim notifikasi setelah transfer selesai."

	return text, BackMenuMarkup()
}

func SimulationView(sim model.Simulation) (string, *tele.ReplyMarkup) {
	var sb strings.Builder

	sb.WriteString("💱 Simulasi Tukar IDR ke TRY\n")
	for _, rung := range sim.BuyRungs {
		sb.WriteString(fmt.Sprintf("💸 %s → 🇹🇷 %s\n", FormatIDR(rung.SourceAmount), FormatTRY(rung.QuotedAmount)))
	}

	sb.WriteString("\n💱 Simulasi Tukar TRY ke IDR\n")
	for _, rung := range sim.SellRungs {
		sb.WriteString(fmt.Sprintf("🇹🇷 %s → %s\n", FormatTRY(rung.SourceAmount), FormatIDR(rung.QuotedAmount)))
	}

	sb.WriteString(fmt.Sprintf("\nUpdate: %s", time.Now().Format(dateTimeLayout)))

	return sb.String(), BackMenuMarkup()
}

// StockView renders the stock-check screen. The margin line is shown to the
// operator only.
func StockView(overview model.StockOverview, isOwner bool) (string, *tele.ReplyMarkup) {
	var sb strings.Builder

	sb.WriteString("📊 Informasi Stok\n\n")

	sb.WriteString(fmt.Sprintf("💰 Stok Rupiah: %s\n", FormatIDR(overview.Rupiah)))
	if overview.RupiahEquivalentTRY != nil {
		sb.WriteString(fmt.Sprintf("   ≈ %s\n", FormatTRY(*overview.RupiahEquivalentTRY)))
	}

	sb.WriteString(fmt.Sprintf("\n🇹🇷 Stok Lira: %s\n", FormatTRY(overview.Lira)))
	if overview.LiraEquivalentIDR != nil {
		sb.WriteString(fmt.Sprintf("   ≈ %s\n", FormatIDR(*overview.LiraEquivalentIDR)))
	}

	sb.WriteString(fmt.Sprintf("\n⏰ Update: %s", time.Now().Format(dateTimeLayout)))
	if isOwner {
		sb.WriteString("\n💹 Margin: 2.5% tersembunyi dalam kurs")
	}

	return sb.String(), BackMenuMarkup()
}

func ContactAdmin(contact string) (string, *tele.ReplyMarkup) {
	text := "👤 Kontak Admin\n\n" +
		fmt.Sprintf("📱 Telegram: %s", contact)

	return text, BackMenuMarkup()
}

func StockUpdatePicker(balances map[model.Currency]decimal.Decimal) (string, *tele.ReplyMarkup) {
	text := "⚙️ Update Stok\n\n" +
		"📊 Stok saat ini:\n" +
		fmt.Sprintf("💰 Rupiah: %s\n", FormatIDR(balances[model.IDR])) +
		fmt.Sprintf("🇹🇷 Lira: %s\n\n", FormatTRY(balances[model.TRY])) +
		"Pilih mata uang yang ingin diupdate:"

	return text, StockUpdateMarkup()
}

func StockDeltaPrompt(currency model.Currency, balance decimal.Decimal) (string, *tele.ReplyMarkup) {
	label, formatted := currencyLabel(currency, balance)

	text := fmt.Sprintf("⚙️ Update Stok %s\n\n", label) +
		fmt.Sprintf("Stok saat ini: %s\n\n", formatted) +
		"Masukkan jumlah untuk MENAMBAH stok (gunakan angka negatif untuk mengurangi):\n" +
		"Contoh: 1000000 (menambah)\n" +
		"Contoh: -500000 (mengurangi)"

	return text, BackMenuMarkup()
}

func StockAdjusted(currency model.Currency, oldBalance, delta, newBalance decimal.Decimal) (string, *tele.ReplyMarkup) {
	label, oldFormatted := currencyLabel(currency, oldBalance)
	_, newFormatted := currencyLabel(currency, newBalance)
	_, deltaFormatted := currencyLabel(currency, delta)

	sign := ""
	if delta.Sign() >= 0 {
		sign = "+"
	}

	text := fmt.Sprintf("✅ Stok %s berhasil diupdate!\n\n", label) +
		"📊 Perubahan:\n" +
		fmt.Sprintf("Stok lama: %s\n", oldFormatted) +
		fmt.Sprintf("Perubahan: %s%s\n", sign, deltaFormatted) +
		fmt.Sprintf("Stok baru: %s\n\n", newFormatted) +
		fmt.Sprintf("📅 Update: %s", time.Now().Format(dateTimeLayout))

	return text, BackMenuMarkup()
}

// StockWouldGoNegative reports the rejection together with the maximum
// permissible reduction.
func StockWouldGoNegative(currency model.Currency, balance decimal.Decimal) (string, *tele.ReplyMarkup) {
	_, formatted := currencyLabel(currency, balance)

	text := "❌ Error: Stok tidak bisa negatif.\n" +
		fmt.Sprintf("Stok saat ini: %s\n", formatted) +
		fmt.Sprintf("Pengurangan maksimal: %s", formatted)

	return text, BackMenuMarkup()
}

func InsufficientStock(currency model.Currency, availability, requested decimal.Decimal) (string, *tele.ReplyMarkup) {
	_, availFormatted := currencyLabel(currency, availability)
	_, requestedFormatted := currencyLabel(currency, requested)

	text := "❌ Stok tidak mencukupi!\n" +
		fmt.Sprintf("Stok tersedia: %s\n", availFormatted) +
		fmt.Sprintf("Nominal diminta: %s\n\n", requestedFormatted) +
		"Silakan masukkan nominal yang lebih kecil atau hubungi admin."

	return text, BackMenuMarkup()
}

// AdminOrderNotification is the operator-facing order message; unlike the
// user views it discloses the margin and the remaining stock.
func AdminOrderNotification(trx model.Transaction, remaining map[model.Currency]decimal.Decimal, exported bool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🔔 PESANAN MASUK - %s\n\n", trx.Flow.Label()))
	sb.WriteString(fmt.Sprintf("👤 Nama: %s\n", trx.Name))
	username := trx.Username
	if username == "" {
		username = "Tidak ada"
	}
	sb.WriteString(fmt.Sprintf("🆔 Username: @%s\n", username))
	sb.WriteString(fmt.Sprintf("🆔 User ID: %d\n", trx.UserID))

	if trx.Flow == model.FlowBuy {
		sb.WriteString(fmt.Sprintf("🏦 IBAN: %s\n", trx.Destination))
		sb.WriteString(fmt.Sprintf("💰 Total pembayaran: %s\n", FormatIDR(trx.AmountIDR)))
		sb.WriteString(fmt.Sprintf("🇹🇷 TRY Dikirim: %s\n", FormatTRY(trx.AmountTRY)))
		sb.WriteString("📊 Margin tersembunyi: 2.5% dari konversi\n")
		sb.WriteString(fmt.Sprintf("📦 Stok Rupiah tersisa: %s\n", FormatIDR(remaining[model.IDR])))
	} else {
		sb.WriteString(fmt.Sprintf("🏦 Rekening: %s\n", trx.Destination))
		sb.WriteString(fmt.Sprintf("🪙 TRY dari user: %s\n", FormatTRY(trx.AmountTRY)))
		sb.WriteString(fmt.Sprintf("💰 IDR yang diterima user: %s\n", FormatIDR(trx.AmountIDR)))
		sb.WriteString("📊 Margin tersembunyi: 2.5% dari konversi\n")
		sb.WriteString(fmt.Sprintf("📦 Stok Lira tersisa: %s\n", FormatTRY(remaining[model.TRY])))
	}

	sb.WriteString(fmt.Sprintf("⏰ Waktu: %s\n", trx.CreatedAt.Format(dateTimeLayout)))
	if exported {
		sb.WriteString("💾 Status Simpan: ✅ Berhasil\n\n")
	} else {
		sb.WriteString("💾 Status Simpan: ❌ Gagal\n\n")
	}

	if trx.Flow == model.FlowBuy {
		sb.WriteString("Silakan verifikasi pembayaran dan proses transaksi ini.")
	} else {
		sb.WriteString("Silakan cek penerimaan Lira dan proses transfer IDR.")
	}

	return sb.String()
}

// StockSummary is the scheduled operator digest of current balances.
func StockSummary(balances map[model.Currency]decimal.Decimal) string {
	return "📊 Ringkasan Stok Harian\n\n" +
		fmt.Sprintf("💰 Rupiah: %s\n", FormatIDR(balances[model.IDR])) +
		fmt.Sprintf("🇹🇷 Lira: %s\n\n", FormatTRY(balances[model.TRY])) +
		fmt.Sprintf("⏰ %s", time.Now().Format(dateTimeLayout))
}

func currencyLabel(currency model.Currency, amount decimal.Decimal) (label, formatted string) {
	if currency == model.TRY {
		return "Lira", FormatTRY(amount)
	}
	return "Rupiah", FormatIDR(amount)
}
