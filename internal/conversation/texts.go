package conversation

const (
	textWelcome = "<b>Welcome to the trading assistant!</b>\n" +
		"\n<b>Available commands:</b>\n" +
		"\n/start - Return to beginning\n" +
		"\n/strong_buy - Execute the trading strategy based on 'STRONG BUY' and 'STRONG SELL' signals from TradingView\n" +
		"\n/my_strategy - Spot trading using previously configured custom strategy\n" +
		"\n/cancel - Use it to terminate any process"

	textTerminated   = "Current process is terminated"
	textUnknown      = "Unknown command"
	textNoFunds      = "Not enough funds. Please check your spot wallet"
	textFetchFailed  = "Failed to get data from the exchange. Please try again later"
	textAssets       = "<b>Your current assets:</b>"
	textEnterAmount  = "Enter %s amount for trading: "
	textCheck        = "<b>Is that correct? Please check once again:</b>"
	textChosenAmount = "Chosen amount: %s %s"
	textStarting     = "Starting...\nto stop execution print 'q'"
	textStopped      = "Execution stopped"
	textFinished     = "Execution finished"
	textFailed       = "Execution stopped: %v"

	textEnterSymbol    = "Please enter SYMBOL: "
	textChooseInterval = "Please choose one of available intervals"
	textEnterQuantity  = "Please enter amount for trading:"
	textSummary        = "Symbol: %s\nInterval: %s\nAmount: %s"

	textBadAmount   = "Incorrect input. Please try again"
	textBadConfirm  = "Incorrect input."
	textBadSymbol   = "Incorrect symbol. Please try again "
	textBadInterval = "Incorrect interval. Please try again."
	textBadQuantity = "Incorrect input. Try again."
	textBadRunning  = "Incorrect input."
)
