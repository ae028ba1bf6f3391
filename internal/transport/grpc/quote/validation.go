package quote

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// stayFields are the fields every quote request carries.
type stayFields struct {
	roomID  string
	dateIn  string
	dateOut string
	guests  int
}

func validateQuoteRequest(req *structpb.Struct) (stayFields, error) {
	var f stayFields
	if req == nil {
		return f, status.Error(codes.InvalidArgument, "request is required")
	}
	fields := req.GetFields()

	f.roomID = fields["room_id"].GetStringValue()
	if f.roomID == "" {
		return f, status.Error(codes.InvalidArgument, "room_id is required")
	}
	f.dateIn = fields["date_in"].GetStringValue()
	if f.dateIn == "" {
		return f, status.Error(codes.InvalidArgument, "date_in is required")
	}
	f.dateOut = fields["date_out"].GetStringValue()
	if f.dateOut == "" {
		return f, status.Error(codes.InvalidArgument, "date_out is required")
	}

	guests, ok := fields["guests"]
	if !ok {
		return f, status.Error(codes.InvalidArgument, "guests is required")
	}
	n := guests.GetNumberValue()
	if n != float64(int(n)) {
		return f, status.Error(codes.InvalidArgument, "guests must be a whole number")
	}
	f.guests = int(n)
	return f, nil
}

func validateConvertRequest(req *structpb.Struct) (amount, currency string, err error) {
	if req == nil {
		return "", "", status.Error(codes.InvalidArgument, "request is required")
	}
	fields := req.GetFields()

	amount = fields["amount"].GetStringValue()
	if amount == "" {
		return "", "", status.Error(codes.InvalidArgument, "amount is required")
	}
	currency = fields["currency"].GetStringValue()
	if currency == "" {
		return "", "", status.Error(codes.InvalidArgument, "currency is required")
	}
	return amount, currency, nil
}
