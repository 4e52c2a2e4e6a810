package async

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFutureResolveAndWait(t *testing.T) {
	var f = NewFuture[int]()
	require.NotEqual(t, f.ID().String(), "")

	go func() {
		time.Sleep(5 * time.Millisecond)
		f.Resolve(42, nil)
	}()

	var v, err = f.Wait()
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestFutureResolveWithError(t *testing.T) {
	var f = NewFuture[string]()
	f.Resolve("", fmt.Errorf("boom"))

	var v, err = f.Wait()
	require.Error(t, err)
	require.Equal(t, "", v)
}

func ExampleFuture_Wait() {
	var f = NewFuture[string]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		fmt.Println("Async routine completes.")
		f.Resolve("done", nil)
	}()

	fmt.Println("Pre-wait logic runs.")
	var v, _ = f.Wait()
	fmt.Println(v)

	// Output:
	// Pre-wait logic runs.
	// Async routine completes.
	// done
}

func TestFutureWaitWithPeriodicTask(t *testing.T) {
	var f = NewFuture[int]()

	go func() {
		time.Sleep(40 * time.Millisecond)
		f.Resolve(7, nil)
	}()

	var ticks int
	var v, err = f.WaitWithPeriodicTask(9*time.Millisecond, func() {
		ticks++
	})
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Greater(t, ticks, 0)
}
