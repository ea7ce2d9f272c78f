/*
Package wallet derives member balances and runs the withdrawal state machine.

The balance is never stored. It is recomputed from the ledger on every read:

	balance = sum(daily ROI) + sum(referral fees earned) - sum(completed withdrawal transactions)

clamped at zero.

A withdrawal moves pending -> completed or pending -> failed, and a member
holds at most one pending request. Requests check the pending rule and the
balance while holding a row lock on the member, so concurrent requests from
the same member serialize. Completing a withdrawal writes the mirrored
withdrawal transaction in the same database transaction.

Usage:

	svc := wallet.NewService(ledger, wallet.WalletConfig{MinWithdrawal: min}, metrics, logger)

	w, err := svc.RequestWithdrawal(ctx, userID, amount, "TRC20")
	w, err = svc.ProcessWithdrawal(ctx, admin, w.ID, models.StatusCompleted)

Error Handling:

- ErrPendingWithdrawalExists: the member already has a pending request
- ErrInsufficientBalance: amount exceeds the derived balance
- ErrWithdrawalProcessed: the withdrawal is no longer pending
- ErrWithdrawalNotFound: unknown withdrawal id
*/
package wallet
