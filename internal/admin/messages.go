package admin

// Replies shown to the admin. Every outcome an admin can fix by rephrasing is
// answered with one of these instead of an error.
const (
	MsgAccessDenied = "Access denied. Admin privileges required."
	MsgUnparseable  = "Sorry, I couldn't understand that command. Try something like \"Delete post ID 123\" or \"Highlight top 3 shops in Brahmanbaria\"."
	MsgUnrecognized = "Command not recognized. Supported actions: delete, block, unblock, approve, reject, highlight, resolve."
	MsgDuplicate    = "This command was already processed."

	MsgPostIDRequired    = "Post ID required"
	MsgShopIDRequired    = "Shop ID required"
	MsgUserEmailRequired = "User email required"
	MsgReportIDRequired  = "Report ID required"

	errorPrefix = "Error executing command: "
)
