package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	"payoutbot/payout"
)

const welcomeMessage = `🚀 Welcome to the <b>Payout Bot</b>!

This bot helps you manage your crypto transactions and wallet with ease. You can:
• Check your balances
• Send funds to others
• View transaction history

To get started, please log in to your account using the button below or type /login.`

const loginMessage = `🔐 Login to your account to get started.
Enter your email and an OTP will be sent to it:
<code>email@example.com</code>`

const otpSentMessage = `An OTP has been sent to your email. Please enter it to complete your login:`

const otpRequestFailedMessage = `Sorry, we couldn't send an OTP to that email. Please try again or contact support.`

const loginExpiredMessage = `Your session has expired. Please start the login process again.`

const invalidOTPMessage = `Invalid OTP. Please try again or restart the login process with /login.`

const invalidEmailMessage = `That doesn't look like a valid email address. Please try again:
<code>email@example.com</code>`

const invalidWalletAddressMessage = `That doesn't look like a valid wallet address. Please check it and try again.`

const invalidAmountMessage = `Please enter a valid positive amount, for example: <code>100</code> or <code>0.5</code>`

const useButtonsMessage = `Please use the buttons above to continue, or press ❌ Cancel to abort.`

const notLoggedInMessage = `You're not currently logged in.`

const loggedOutMessage = `You have been logged out successfully.`

const authRequiredMessage = `⚠️ You need to be logged in to use this feature.

Please use /login to authenticate first.`

const genericErrorMessage = `An error occurred. Please try again later.`

const unknownStateMessage = `Please use a command or one of the buttons to continue. Type /help to see what I can do.`

const helpMessage = `📚 <b>Payout Bot - Help Guide</b>

Here's a complete guide to all available commands:

<b>🚀 Basic Commands</b>

/start - Start the bot and see the welcome screen
/help - Show this help message with all commands and instructions

<b>🔐 Authentication</b>

/login - Log in to your account
  • Step 1: Enter your email address
  • Step 2: Enter the OTP sent to your email
  • Note: KYC verification is required for most features

/logout - Log out from your current session
/verify - Check your KYC verification status

<b>💰 Wallet Management</b>

/wallet - Manage your cryptocurrency wallet
  • View all your wallets across different networks
  • Check wallet balances
  • Set a default wallet for transactions
  • Generate deposit addresses

<b>💸 Transfer &amp; Payments</b>

/transfer - Access all transfer-related features
  • View your transaction history
  • Send funds to others
  • Withdraw to external wallets
  • Batch transfers and offramp

/send - Quick command to send funds (shortcut)

<b>🔍 Additional Information</b>

• <b>Rate Limiting:</b> You're limited to 10 requests per minute
• <b>Security:</b> Never share your OTP with anyone, including support`

const transferOptionsMessage = `💸 <b>Transfer Operations</b>

Choose an operation:`

const transferEmptyListMessage = `No transfers found. Use the /send command to make your first transfer.`

const sendTransferHeaderMessage = `💸 <b>Send Funds</b>

How would you like to send funds?`

const sendByEmailMessage = `📧 <b>Send by Email</b>

Please enter the recipient's email address:`

const sendByWalletMessage = `🔑 <b>Send by Wallet Address</b>

Please enter the recipient's wallet address:`

const sendCurrencyMessage = `💱 <b>Select Currency</b>

Please select the currency:`

const sendPurposeMessage = `🏷️ <b>Transfer Purpose</b>

Please select a purpose for this transfer:`

const sendErrorMessage = `❌ <b>Transfer Failed</b>

Sorry, we couldn't process your transfer.
Ensure you have enough balance in your default wallet.
Please try again later or contact support.`

const transferCancelledMessage = `Transfer cancelled. What would you like to do next?`

const noPendingTransferMessage = `There's no transfer waiting for confirmation. Use /send to start one.`

const withdrawHeaderMessage = `🏧 <b>Withdraw to Wallet</b>

Please enter the wallet address you want to withdraw to:`

const batchTransferHeaderMessage = `📦 <b>Batch Transfer</b>

This feature allows you to send funds to multiple recipients at once.
Prepare your recipients as lines of:

email/wallet,amount,currency,purpose

Example:
user@example.com,100,USDT,PAYMENT
0x1234...5678,50,USDT,GIFT`

const offrampTransferHeaderMessage = `🏦 <b>Offramp Transfer</b>

This feature allows you to convert crypto to fiat and withdraw it to a bank account.

Offramp transfers are set up through the web portal for now.`

const walletListHeaderMessage = `🏦 <b>Your Wallets</b>

Select a wallet to view its details:`

const noWalletsMessage = `You don't have any wallets yet.`

const errorFetchingWalletsMessage = `😕 Sorry, we encountered an error fetching your wallets. Please try again later.`

const errorFetchingTransfersMessage = `😕 Sorry, we encountered an error fetching your transfers. Please try again later.`

const verifiedMessage = `✅ Great news! Your KYC verification is now complete.

You can now use all features of the bot.`

const notVerifiedMessage = `⚠️ Your KYC verification is still pending or incomplete.

Please complete your KYC verification to access all features.`

func rateLimitExceededMessage(remainingSeconds int) string {
	return fmt.Sprintf(`⚠️ <b>Rate limit exceeded</b>

You've made too many requests in a short period.
Please wait for <b>%d</b> seconds before trying again.

This limit helps ensure the service remains stable for all users.`, remainingSeconds)
}

func kycRequiredMessage(feature string) string {
	return fmt.Sprintf("⚠️ You need to complete KYC verification to access %s.", feature)
}

func unknownCommandMessage(commands []string) string {
	return fmt.Sprintf("❓ Unknown command. Please use one of the following commands:\n%s",
		strings.Join(commands, ", "))
}

func transferListHeaderMessage(page, totalPages int) string {
	if totalPages < 1 {
		totalPages = 1
	}
	return fmt.Sprintf(`📋 <b>Your Transfers</b> (Page %d/%d)

Select a transfer to view details:`, page, totalPages)
}

func transferDetailsMessage(t payout.Transfer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 <b>Transfer Details</b>\n\n")
	fmt.Fprintf(&b, "<b>ID:</b> %s\n", html.EscapeString(t.ID))
	fmt.Fprintf(&b, "<b>Status:</b> %s\n", html.EscapeString(t.Status))
	fmt.Fprintf(&b, "<b>Amount:</b> %s %s\n", html.EscapeString(t.Amount), html.EscapeString(t.Currency))
	fmt.Fprintf(&b, "<b>Fee:</b> %s %s\n", html.EscapeString(t.TotalFee), html.EscapeString(t.FeeCurrency))
	fmt.Fprintf(&b, "<b>Date:</b> %s\n", formatAPITime(t.CreatedAt))
	fmt.Fprintf(&b, "<b>Type:</b> %s\n", html.EscapeString(t.Type))
	if addr := t.DestinationAccount.WalletAddress; addr != "" {
		fmt.Fprintf(&b, "<b>Destination:</b> %s\n", ShortenWalletAddress(addr))
	}
	return b.String()
}

func transferListEntry(t payout.Transfer) string {
	return fmt.Sprintf("%s - %s %s (%s)", formatAPIDate(t.CreatedAt), t.Amount, t.Currency, t.Status)
}

func sendAmountMessage(recipient string) string {
	return fmt.Sprintf(`💰 <b>Enter Amount</b>

Please enter the amount you want to send to %s:`, html.EscapeString(recipient))
}

func sendConfirmationMessage(recipient, amount, currency, purpose string) string {
	return fmt.Sprintf(`✅ <b>Confirm Transfer</b>

You are about to send:
<b>Amount:</b> %s %s
<b>To:</b> %s
<b>Purpose:</b> %s

Do you want to proceed?`,
		html.EscapeString(amount), html.EscapeString(currency),
		html.EscapeString(recipient), html.EscapeString(purpose))
}

func sendSuccessMessage(amount, currency, recipient string) string {
	return fmt.Sprintf(`✅ <b>Transfer Successful!</b>

You have sent %s %s to %s.`,
		html.EscapeString(amount), html.EscapeString(currency), html.EscapeString(recipient))
}

func walletDetailMessage(w payout.Wallet, balance string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💼 <b>Wallet Details</b>\n\n")
	fmt.Fprintf(&b, "<b>Network:</b> %s\n", html.EscapeString(w.Network))
	fmt.Fprintf(&b, "<b>Wallet ID:</b> %s\n", html.EscapeString(w.ID))
	fmt.Fprintf(&b, "<b>Address:</b> <code>%s</code>\n", html.EscapeString(w.WalletAddress))
	fmt.Fprintf(&b, "<b>Balance:</b> %s\n", html.EscapeString(balance))
	if w.IsDefault {
		fmt.Fprintf(&b, "✅ <b>Default Wallet</b>\n")
	}
	fmt.Fprintf(&b, "\nWhat would you like to do with this wallet?")
	return b.String()
}

func walletBalancesMessage(balances []payout.WalletBalances) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 <b>Your Wallet Balances</b>\n")
	for _, wb := range balances {
		fmt.Fprintf(&b, "\n<b>Network:</b> %s", html.EscapeString(wb.Network))
		if wb.IsDefault {
			b.WriteString(" (Default)")
		}
		b.WriteString("\n")
		if len(wb.Balances) == 0 {
			b.WriteString("No balances\n")
			continue
		}
		for _, bal := range wb.Balances {
			fmt.Fprintf(&b, "<b>%s:</b> %s\n", html.EscapeString(bal.Symbol), html.EscapeString(bal.Balance))
		}
	}
	return b.String()
}

func depositInstructionsMessage(network, address string) string {
	return fmt.Sprintf(`📥 <b>Deposit to your %s wallet</b>

Send funds to this address:
<code>%s</code>

Only send assets on the %s network to this address.`,
		html.EscapeString(network), html.EscapeString(address), html.EscapeString(network))
}

func walletSetAsDefaultMessage(network string) string {
	return fmt.Sprintf("✅ Your %s wallet is now the default wallet.", html.EscapeString(network))
}

func walletCreateMessage(networks []string) string {
	return fmt.Sprintf(`🆕 <b>Create a Wallet</b>

Select the network for your new wallet:
%s`, html.EscapeString(strings.Join(networks, ", ")))
}

func formatAPITime(value string) string {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.Format("2006-01-02 15:04")
	}
	return html.EscapeString(value)
}

func formatAPIDate(value string) string {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.Format("2006-01-02")
	}
	return value
}
