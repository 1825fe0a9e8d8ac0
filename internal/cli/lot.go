package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/albert-labs/albert-go/collections"
)

func newLotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lot",
		Short:   "Inspect and adjust inventory lots",
		GroupID: groupUserFacing,
	}
	cmd.AddCommand(newLotGetCommand())
	cmd.AddCommand(newLotAdjustCommand())
	cmd.AddCommand(newLotTransferCommand())
	return cmd
}

func newLotGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <lot-id>",
		Short: "Show one lot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := loadClient()
			if err != nil {
				return err
			}
			lot, err := client.Lots.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, lot)
		},
	}
}

func newLotAdjustCommand() *cobra.Command {
	var quantity string

	cmd := &cobra.Command{
		Use:   "adjust <lot-id> <add|subtract|set|zero>",
		Short: "Adjust a lot's on-hand quantity",
		Long: `Adjust encodes the quantity change as a signed delta against the lot's
current on-hand amount. The zero action takes no quantity; every other
action requires a strictly positive one.`,
		Example: `  albertctl lot adjust LOT123 add --quantity 5
  albertctl lot adjust LOT123 set --quantity 12.5
  albertctl lot adjust LOT123 zero`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := collections.AdjustmentRequest{
				LotID:  args[0],
				Action: collections.AdjustmentAction(args[1]),
			}
			if quantity != "" {
				parsed, err := strconv.ParseFloat(quantity, 64)
				if err != nil {
					return usageError(cmd, "quantity must be a decimal number, got "+strconv.Quote(quantity))
				}
				request.Quantity = &parsed
			}

			client, err := loadClient()
			if err != nil {
				return err
			}
			lot, err := client.Lots.Adjust(cmd.Context(), request)
			if err != nil {
				return err
			}
			return printResult(cmd, lot)
		},
	}
	cmd.Flags().StringVar(&quantity, "quantity", "", "Quantity for the adjustment")
	return cmd
}

func newLotTransferCommand() *cobra.Command {
	var (
		target   string
		quantity string
	)

	cmd := &cobra.Command{
		Use:   "transfer <lot-id>",
		Short: "Move lot quantity to another storage location",
		Long: `Transfer moves quantity from a lot to a storage location. Quantity "ALL"
relocates the lot itself; a positive decimal splits the transferred amount
into a new lot at the target location.`,
		Example: `  albertctl lot transfer LOT123 --to SL456 --quantity ALL
  albertctl lot transfer LOT123 --to SL456 --quantity 2.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if target == "" {
				return usageError(cmd, "--to is required")
			}
			if quantity == "" {
				return usageError(cmd, "--quantity is required")
			}

			client, err := loadClient()
			if err != nil {
				return err
			}
			lot, err := client.Lots.Transfer(cmd.Context(), collections.TransferRequest{
				LotID:             args[0],
				StorageLocationID: target,
				Quantity:          quantity,
			})
			if err != nil {
				return err
			}
			return printResult(cmd, lot)
		},
	}
	cmd.Flags().StringVar(&target, "to", "", "Target storage location id")
	cmd.Flags().StringVar(&quantity, "quantity", "", `Amount to move, or "ALL" for the whole lot`)
	return cmd
}
