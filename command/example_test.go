package command_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/mjolnir/command"
	"github.com/jonwraymond/mjolnir/config"
)

func ExampleInvoke() {
	rt := command.NewRuntime(command.RuntimeConfig{
		Provider:      config.NewStatic(nil),
		DisableGauges: true,
	})
	defer rt.Close()

	cmd := command.New("GreetCommand", command.NewKey("example"),
		func(ctx context.Context) (string, error) {
			return "hello", nil
		})

	res, err := command.Invoke(context.Background(), rt, cmd, command.Throw)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(res.Value)
	// Output: hello
}

func ExampleInvoke_fallback() {
	rt := command.NewRuntime(command.RuntimeConfig{
		Provider:      config.NewStatic(nil),
		DisableGauges: true,
	})
	defer rt.Close()

	cmd := command.New("FetchCommand", command.NewKey("example"),
		func(ctx context.Context) (string, error) {
			return "", errors.New("backend down")
		}).
		WithFallback(func(ctx context.Context, cause error) (string, error) {
			return "cached value", nil
		})

	res, _ := command.Invoke(context.Background(), rt, cmd, command.Throw)
	fmt.Println(res.Value)
	// Output: cached value
}

func ExampleInvokeAsync() {
	rt := command.NewRuntime(command.RuntimeConfig{
		Provider:      config.NewStatic(nil),
		DisableGauges: true,
	})
	defer rt.Close()

	cmd := command.New("SumCommand", command.NewKey("example"),
		func(ctx context.Context) (int, error) {
			return 2 + 2, nil
		})

	f := command.InvokeAsync(context.Background(), rt, cmd, command.Throw)
	res, err := f.Wait(context.Background())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(res.Value)
	// Output: 4
}

func ExampleWrap() {
	rt := command.NewRuntime(command.RuntimeConfig{
		Provider:      config.NewStatic(nil),
		DisableGauges: true,
	})
	defer rt.Close()

	square := command.Wrap(rt, command.Binding{Group: command.NewKey("math")}, "Square",
		func(ctx context.Context, n int) (int, error) {
			return n * n, nil
		})

	got, _ := square(context.Background(), 7)
	fmt.Println(got)
	// Output: 49
}
